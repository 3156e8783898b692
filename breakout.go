package fabmetrics

// breakout.go holds the label parsing and breakout resolution shared
// by the cost, power, oversubscription and cabling models.

import (
	"strconv"
	"strings"
)

// leadingInt returns the decimal integer at the front of s, and whether there was one
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end += 1
	}
	if end == 0 {
		return 0, false
	}

	value, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}

	return value, true
}

// ParseSpeedGbps returns the speed in Gbps encoded by a label like "100G".
// A label with no leading integer parses to 0.
func ParseSpeedGbps(label string) int {
	speed, _ := leadingInt(label)
	return speed
}

// ParseBreakoutLabel splits a label "<factor>x<speed>" into its factor and
// wire speed, e.g. "4x25G" gives (4, "25G", true).  ok is false when the label
// has no 'x' separator or the factor is not a positive integer.
func ParseBreakoutLabel(label string) (factor int, wireSpeed string, ok bool) {
	sep := strings.IndexAny(label, "xX")
	if sep < 0 {
		return 0, "", false
	}

	factor, present := leadingInt(label[:sep])
	if !present || factor < 1 {
		return 0, "", false
	}

	return factor, strings.TrimSpace(label[sep+1:]), true
}

// A breakoutResolution is what a configured (speed, mode) pair resolves to
type breakoutResolution struct {
	// number of logical ports one physical port is split into, at least 1
	Factor int

	// speed label of each logical port
	WireSpeed string

	// true if an entry for the mode was found among the options for the speed
	Matched bool
}

// resolveBreakout looks up the breakout option for mode among the options listed
// for speed.  Without a match the port is not broken out: factor 1 at the port's
// own speed.  A matched option with no usable factor takes it from its label.
func (nc *NormalizedConfig) resolveBreakout(speed, mode string) breakoutResolution {
	unbroken := breakoutResolution{Factor: 1, WireSpeed: speed}

	for _, opt := range nc.Breakouts[speed] {
		if opt.Type != mode {
			continue
		}

		labelFactor, wireSpeed, ok := ParseBreakoutLabel(opt.Type)

		factor := opt.Factor
		if factor < 1 {
			factor = labelFactor
		}
		if factor < 1 {
			factor = 1
		}

		if !ok || len(wireSpeed) == 0 {
			wireSpeed = speed
		}

		return breakoutResolution{Factor: factor, WireSpeed: wireSpeed, Matched: true}
	}

	return unbroken
}

// spineBreakout resolves the breakout of the spine ports
func (nc *NormalizedConfig) spineBreakout() breakoutResolution {
	return nc.resolveBreakout(nc.Spine.PortSpeed, nc.Spine.BreakoutMode)
}

// leafBreakout resolves the breakout of the leaf downlink ports
func (nc *NormalizedConfig) leafBreakout() breakoutResolution {
	return nc.resolveBreakout(nc.Leaf.DownlinkSpeed, nc.Leaf.BreakoutMode)
}

// legacyBreakoutFactor finds the first enabled legacy breakout whose label mentions
// linkType and returns the factor at the front of that label.  Entries whose label
// carries no positive factor are passed over.
func (nc *NormalizedConfig) legacyBreakoutFactor(linkType string) (int, bool) {
	if len(linkType) == 0 {
		return 0, false
	}

	for _, bo := range nc.LegacyBreakouts {
		if !bo.Enabled || !strings.Contains(bo.Type, linkType) {
			continue
		}
		factor, present := leadingInt(bo.Type)
		if present && factor >= 1 {
			return factor, true
		}
	}

	return 0, false
}
