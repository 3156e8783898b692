package fabmetrics

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"
)

// ErrInvalidConfiguration is wrapped by every error ValidateConfiguration returns
// for a configuration that is present but breaks a fabric invariant
var ErrInvalidConfiguration = errors.New("invalid topology configuration")

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateConfiguration checks cfg against the invariants of a Clos fabric
// description.  The metric calculators never call it: they are total over any
// configuration and leave judging one to the caller.  All violations found are
// reported together.
func ValidateConfiguration(cfg *TopologyConfiguration) error {
	if cfg == nil {
		return ErrMissingConfiguration
	}

	errs := make([]error, 0)

	// field ranges, from struct tags
	if err := validate.Struct(cfg); err != nil {
		errs = append(errs, formatValidationErrors(err)...)
	}

	// tiers against spines
	if cfg.NumTiers == 1 && cfg.NumSpines != 0 {
		errs = append(errs, fmt.Errorf("NumSpines: a single-tier fabric has no spines, got %d", cfg.NumSpines))
	}
	if cfg.NumTiers > 1 && cfg.NumSpines < 1 {
		errs = append(errs, fmt.Errorf("NumSpines: a %d-tier fabric needs at least one spine", cfg.NumTiers))
	}

	// breakout labels
	if cfg.SpineConfig != nil {
		errs = append(errs, checkBreakoutMode("SpineConfig.BreakoutMode", cfg.SpineConfig.BreakoutMode))
	}
	if cfg.LeafConfig != nil {
		errs = append(errs, checkBreakoutMode("LeafConfig.BreakoutMode", cfg.LeafConfig.BreakoutMode))
	}

	speeds := make([]string, 0, len(cfg.BreakoutOptions.BySpeed))
	for speed := range cfg.BreakoutOptions.BySpeed {
		speeds = append(speeds, speed)
	}
	slices.Sort(speeds)
	for _, speed := range speeds {
		for idx, opt := range cfg.BreakoutOptions.BySpeed[speed] {
			field := fmt.Sprintf("BreakoutOptions[%s][%d]", speed, idx)
			factor, _, ok := ParseBreakoutLabel(opt.Type)
			if !ok {
				errs = append(errs, fmt.Errorf("%s: label %q is not of the form <factor>x<speed>", field, opt.Type))
				continue
			}
			if opt.Factor != 0 && opt.Factor != factor {
				errs = append(errs, fmt.Errorf("%s: factor %d disagrees with label %q", field, opt.Factor, opt.Type))
			}
		}
	}

	if err := ReportErrs(errs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	return nil
}

// checkBreakoutMode returns an error if a non-empty breakout label does not parse
func checkBreakoutMode(field, mode string) error {
	if len(mode) == 0 {
		return nil
	}
	if _, _, ok := ParseBreakoutLabel(mode); !ok {
		return fmt.Errorf("%s: label %q is not of the form <factor>x<speed>", field, mode)
	}
	return nil
}

// formatValidationErrors converts validator errors into one error per failed field
func formatValidationErrors(err error) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		if len(fe.Param()) > 0 {
			errs = append(errs, fmt.Errorf("%s: failed %s=%s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			errs = append(errs, fmt.Errorf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}

	return errs
}
