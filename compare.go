package fabmetrics

// compare.go composes the metric models into one result per topology, and
// maps that over a list of topologies for side-by-side comparison.

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/iti/fabmetrics/internal/logging"
)

// ErrMissingConfiguration marks a topology, or a configuration, that is absent
var ErrMissingConfiguration = errors.New("topology configuration is missing")

// TopologyMetrics gathers every metric computed for one topology.  A fresh
// value is built on every call and shares nothing with its input.
type TopologyMetrics struct {
	DeviceCount      DeviceCount             `json:"deviceCount" yaml:"deviceCount"`
	Cost             CostMetrics             `json:"cost" yaml:"cost"`
	Power            PowerMetrics            `json:"power" yaml:"power"`
	Latency          LatencyMetrics          `json:"latency" yaml:"latency"`
	Oversubscription OversubscriptionMetrics `json:"oversubscription" yaml:"oversubscription"`
	RackSpace        RackSpaceMetrics        `json:"rackSpace" yaml:"rackSpace"`
	Cabling          CablingMetrics          `json:"cabling" yaml:"cabling"`
}

// WriteToFile stores the metrics to the file whose name is given, as json or yaml
// by the extension of the name
func (tm *TopologyMetrics) WriteToFile(filename string) error {
	return writeDescToFile(filename, tm)
}

// allMetrics runs every model over an already normalized configuration
func (nc *NormalizedConfig) allMetrics() *TopologyMetrics {
	return &TopologyMetrics{
		DeviceCount:      nc.deviceCount(),
		Cost:             nc.cost(),
		Power:            nc.power(),
		Latency:          nc.latency(),
		Oversubscription: nc.oversubscription(),
		RackSpace:        nc.rackSpace(),
		Cabling:          nc.cabling(),
	}
}

// CalculateAllMetrics returns every metric of the topology, or nil when the
// topology or its configuration is absent.  The configuration is normalized
// once and is not modified.
func CalculateAllMetrics(t *Topology) *TopologyMetrics {
	if t == nil || t.Configuration == nil {
		return nil
	}

	nc := NormalizeConfiguration(t.Configuration)

	return nc.allMetrics()
}

// CalculateAllMetricsTraced is CalculateAllMetrics that also records, under the
// topology's ID, the normalized configuration, the breakout resolutions and every
// metric into tm.  An inactive or nil tm records nothing.
func CalculateAllMetricsTraced(t *Topology, tm *TraceManager) (*TopologyMetrics, error) {
	if t == nil || t.Configuration == nil {
		return nil, nil
	}

	nc := NormalizeConfiguration(t.Configuration)
	metrics := nc.allMetrics()

	if !tm.Active() {
		return metrics, nil
	}

	tm.AddName(t.ID, t.Name)
	steps := []struct {
		step   string
		record any
	}{
		{"normalize", nc},
		{"spine-breakout", nc.spineBreakout()},
		{"leaf-breakout", nc.leafBreakout()},
		{"device-count", metrics.DeviceCount},
		{"cost", metrics.Cost},
		{"power", metrics.Power},
		{"latency", metrics.Latency},
		{"oversubscription", metrics.Oversubscription},
		{"rack-space", metrics.RackSpace},
		{"cabling", metrics.Cabling},
	}

	errs := make([]error, 0)
	for _, s := range steps {
		errs = append(errs, tm.AddTrace(t.ID, s.step, s.record))
	}

	return metrics, ReportErrs(errs)
}

// ComparisonResult is the metrics of one topology in a comparison
type ComparisonResult struct {
	ID      string           `json:"id" yaml:"id"`
	Name    string           `json:"name" yaml:"name"`
	Metrics *TopologyMetrics `json:"metrics" yaml:"metrics"`
}

// ComparisonResults is an ordered list of results, one per compared topology
type ComparisonResults []ComparisonResult

// WriteToFile stores the results to the file whose name is given, as json or yaml
// by the extension of the name
func (cr ComparisonResults) WriteToFile(filename string) error {
	return writeDescToFile(filename, cr)
}

// ComparisonError identifies the topology of a comparison whose metrics could not be computed
type ComparisonError struct {
	// position of the topology in the compared list
	Index int
	ID    string
	Name  string
	Err   error
}

func (ce *ComparisonError) Error() string {
	return fmt.Sprintf("topology %d (id %q, name %q): %v", ce.Index, ce.ID, ce.Name, ce.Err)
}

func (ce *ComparisonError) Unwrap() error {
	return ce.Err
}

// compareOne computes the comparison entry of the topology at position idx
func compareOne(idx int, t *Topology) (ComparisonResult, error) {
	if t == nil {
		return ComparisonResult{}, &ComparisonError{Index: idx, Err: ErrMissingConfiguration}
	}

	metrics := CalculateAllMetrics(t)
	if metrics == nil {
		return ComparisonResult{}, &ComparisonError{Index: idx, ID: t.ID, Name: t.Name, Err: ErrMissingConfiguration}
	}

	return ComparisonResult{ID: t.ID, Name: t.Name, Metrics: metrics}, nil
}

// CompareTopologies computes the metrics of every topology, returning results in
// input order.  An empty list yields nil results and no error.  The first topology
// that cannot be computed stops the comparison with a *ComparisonError naming it;
// no partial result is returned.
func CompareTopologies(topologies []*Topology) (ComparisonResults, error) {
	if len(topologies) == 0 {
		return nil, nil
	}

	results := make(ComparisonResults, 0, len(topologies))
	for idx, t := range topologies {
		res, err := compareOne(idx, t)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

// CompareOptions tunes CompareTopologiesConcurrent
type CompareOptions struct {
	// maximum number of topologies computed at once; zero or less means no limit
	Workers int

	// receives a warning for each topology that fails; defaults to the logger on the context
	Logger logging.Logger
}

// CompareTopologiesConcurrent has the contract of CompareTopologies but computes
// topologies in parallel.  Results keep input order.  Once any topology fails, or ctx
// is done, topologies not yet started are skipped.  A failing topology is reported
// as a *ComparisonError naming it; a cancelled run returns the context's error.
func CompareTopologiesConcurrent(ctx context.Context, topologies []*Topology, opts CompareOptions) (ComparisonResults, error) {
	if len(topologies) == 0 {
		return nil, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	results := make(ComparisonResults, len(topologies))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for idx, t := range topologies {
		if gctx.Err() != nil {
			break
		}

		idx, t := idx, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := compareOne(idx, t)
			if err != nil {
				logger.Warn(gctx, "topology comparison failed", logging.Int("index", idx), logging.Err(err))
				return err
			}
			results[idx] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// cancelled before any item was handed out
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "topologies compared", logging.Int("count", len(results)))

	return results, nil
}

// MetricExtremes gives the lowest and highest value of one metric across a
// comparison, and the IDs of the topologies holding them.  Ties go to the
// topology listed first.
type MetricExtremes struct {
	Min   float64 `json:"min" yaml:"min"`
	MinID string  `json:"minId" yaml:"minId"`
	Max   float64 `json:"max" yaml:"max"`
	MaxID string  `json:"maxId" yaml:"maxId"`
}

// ComparisonSummary gives the extremes of the headline metrics of a comparison
type ComparisonSummary struct {
	Count     int            `json:"count" yaml:"count"`
	Cost      MetricExtremes `json:"cost" yaml:"cost"`
	Power     MetricExtremes `json:"power" yaml:"power"`
	Latency   MetricExtremes `json:"latency" yaml:"latency"`
	RackUnits MetricExtremes `json:"rackUnits" yaml:"rackUnits"`
	Cables    MetricExtremes `json:"cables" yaml:"cables"`
}

// SummarizeComparison reduces comparison results to the extremes of total cost,
// total power, total latency, rack units and cable count.  Results without
// metrics are passed over.
func SummarizeComparison(results ComparisonResults) ComparisonSummary {
	ids := make([]string, 0, len(results))
	cost := make([]float64, 0, len(results))
	power := make([]float64, 0, len(results))
	latency := make([]float64, 0, len(results))
	rackUnits := make([]float64, 0, len(results))
	cables := make([]float64, 0, len(results))

	for _, res := range results {
		if res.Metrics == nil {
			continue
		}
		ids = append(ids, res.ID)
		cost = append(cost, res.Metrics.Cost.Total)
		power = append(power, res.Metrics.Power.Total)
		latency = append(latency, res.Metrics.Latency.Total)
		rackUnits = append(rackUnits, float64(res.Metrics.RackSpace.TotalRackUnits))
		cables = append(cables, float64(res.Metrics.Cabling.Total))
	}

	summary := ComparisonSummary{Count: len(ids)}
	if len(ids) == 0 {
		return summary
	}

	summary.Cost = extremes(ids, cost)
	summary.Power = extremes(ids, power)
	summary.Latency = extremes(ids, latency)
	summary.RackUnits = extremes(ids, rackUnits)
	summary.Cables = extremes(ids, cables)

	return summary
}

// extremes finds the min and max of values, which is non-empty and parallel to ids
func extremes(ids []string, values []float64) MetricExtremes {
	minIdx := floats.MinIdx(values)
	maxIdx := floats.MaxIdx(values)

	return MetricExtremes{
		Min:   values[minIdx],
		MinID: ids[minIdx],
		Max:   values[maxIdx],
		MaxID: ids[maxIdx],
	}
}
