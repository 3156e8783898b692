// Command fabmetrics reads a topology, or a dictionary of topologies, from a
// json or yaml file and prints the fabric metrics computed from it.
//
//	fabmetrics -topo fabric.yaml
//	fabmetrics -dict candidates.json -workers 4 -out comparison.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/iti/fabmetrics"
	"github.com/iti/fabmetrics/internal/logging"
)

type options struct {
	topoFile  string
	dictFile  string
	outFile   string
	traceFile string
	workers   int
	validate  bool
	logLevel  string
	logFormat string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.topoFile, "topo", "", "file holding a single topology (json or yaml)")
	flag.StringVar(&opts.dictFile, "dict", "", "file holding a dictionary of topologies to compare (json or yaml)")
	flag.StringVar(&opts.outFile, "out", "", "file to write the metrics to (json or yaml by extension)")
	flag.StringVar(&opts.traceFile, "trace", "", "file to write the calculation trace of a single topology to")
	flag.IntVar(&opts.workers, "workers", 0, "topologies computed at once when comparing; 0 means no limit")
	flag.BoolVar(&opts.validate, "validate", false, "validate configurations before computing metrics")
	flag.StringVar(&opts.logLevel, "log-level", os.Getenv("LOG_LEVEL"), "debug, info, warn or error")
	flag.StringVar(&opts.logFormat, "log-format", os.Getenv("LOG_FORMAT"), "text or json")
	flag.Parse()

	log := logging.New(logging.Config{Level: opts.logLevel, Format: opts.logFormat})
	ctx := logging.ContextWithLogger(context.Background(), log)

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Error(ctx, "fabmetrics failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if (len(opts.topoFile) == 0) == (len(opts.dictFile) == 0) {
		return errors.New("exactly one of -topo and -dict must be given")
	}

	inputs := []string{opts.topoFile, opts.dictFile}
	if _, err := fabmetrics.CheckReadableFiles(inputs); err != nil {
		return err
	}
	if _, err := fabmetrics.CheckOutputFiles([]string{opts.outFile, opts.traceFile}); err != nil {
		return err
	}

	if len(opts.topoFile) > 0 {
		return runSingle(ctx, opts, out)
	}

	return runComparison(ctx, opts, out)
}

func runSingle(ctx context.Context, opts options, out io.Writer) error {
	log := logging.FromContext(ctx)

	topo, err := fabmetrics.ReadTopology(opts.topoFile, fabmetrics.UseYAML(opts.topoFile), nil)
	if err != nil {
		return err
	}
	if opts.validate {
		if err := fabmetrics.ValidateConfiguration(topo.Configuration); err != nil {
			return fmt.Errorf("topology %s: %w", topo.Name, err)
		}
	}

	tm := fabmetrics.CreateTraceManager(topo.Name, len(opts.traceFile) > 0)
	metrics, err := fabmetrics.CalculateAllMetricsTraced(topo, tm)
	if err != nil {
		log.Warn(ctx, "calculation trace incomplete", logging.Err(err))
	}
	if metrics == nil {
		return fmt.Errorf("topology %s: %w", topo.Name, fabmetrics.ErrMissingConfiguration)
	}

	fmt.Fprintln(out, renderMetrics(topo.Name, metrics))

	if len(opts.traceFile) > 0 {
		if _, err := tm.WriteToFile(opts.traceFile); err != nil {
			return err
		}
		log.Info(ctx, "trace written", logging.String("file", opts.traceFile))
	}
	if len(opts.outFile) > 0 {
		if err := metrics.WriteToFile(opts.outFile); err != nil {
			return err
		}
		log.Info(ctx, "metrics written", logging.String("file", opts.outFile))
	}

	return nil
}

func runComparison(ctx context.Context, opts options, out io.Writer) error {
	log := logging.FromContext(ctx)

	dict, err := fabmetrics.ReadTopologyDict(opts.dictFile, fabmetrics.UseYAML(opts.dictFile), nil)
	if err != nil {
		return err
	}

	topologies := dict.List()
	if opts.validate {
		errs := make([]error, 0)
		for _, t := range topologies {
			if err := fabmetrics.ValidateConfiguration(t.Configuration); err != nil {
				errs = append(errs, fmt.Errorf("topology %s: %w", t.Name, err))
			}
		}
		if err := fabmetrics.ReportErrs(errs); err != nil {
			return err
		}
	}

	results, err := fabmetrics.CompareTopologiesConcurrent(ctx, topologies, fabmetrics.CompareOptions{Workers: opts.workers, Logger: log})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		log.Warn(ctx, "dictionary holds no topologies", logging.String("dict", dict.DictName))
		return nil
	}

	fmt.Fprintln(out, renderComparison(results))
	fmt.Fprintln(out, renderSummary(results, fabmetrics.SummarizeComparison(results)))

	if len(opts.outFile) > 0 {
		if err := results.WriteToFile(opts.outFile); err != nil {
			return err
		}
		log.Info(ctx, "comparison written", logging.String("file", opts.outFile))
	}

	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderMetrics(name string, m *fabmetrics.TopologyMetrics) string {
	t := newTable("metric", name)
	t.Row("devices", fmt.Sprintf("%d (%d spine, %d leaf)", m.DeviceCount.Total, m.DeviceCount.Spines, m.DeviceCount.Leafs))
	t.Row("cost", fmt.Sprintf("%s (switches %s, optics %s)", num(m.Cost.Total), num(m.Cost.Switches.Total), num(m.Cost.Optics)))
	t.Row("power", fmt.Sprintf("%s (switches %s, optics %s)", num(m.Power.Total), num(m.Power.Switches.Total), num(m.Power.Optics)))
	t.Row("latency", fmt.Sprintf("%s over %d hops", num(m.Latency.Total), m.Latency.Hops))
	t.Row("oversubscription", fmt.Sprintf("%s (down %d / up %d Gbps)", m.Oversubscription.Ratio,
		m.Oversubscription.TotalDownlinkCapacity, m.Oversubscription.TotalUplinkCapacity))
	t.Row("rack space", fmt.Sprintf("%dU in %d racks", m.RackSpace.TotalRackUnits, m.RackSpace.RacksNeeded))
	t.Row("cables", fmt.Sprintf("%d (%d standard, %d breakout)", m.Cabling.Total, m.Cabling.Standard, m.Cabling.Breakout))

	return t.String()
}

func renderComparison(results fabmetrics.ComparisonResults) string {
	t := newTable("topology", "devices", "cost", "power", "latency", "oversub", "rack U", "racks", "cables")
	for _, res := range results {
		m := res.Metrics
		t.Row(res.Name,
			strconv.Itoa(m.DeviceCount.Total),
			num(m.Cost.Total),
			num(m.Power.Total),
			num(m.Latency.Total),
			m.Oversubscription.Ratio,
			strconv.Itoa(m.RackSpace.TotalRackUnits),
			strconv.Itoa(m.RackSpace.RacksNeeded),
			strconv.Itoa(m.Cabling.Total))
	}

	return t.String()
}

func renderSummary(results fabmetrics.ComparisonResults, s fabmetrics.ComparisonSummary) string {
	names := make(map[string]string, len(results))
	for _, res := range results {
		names[res.ID] = res.Name
	}

	t := newTable("metric", "lowest", "highest")
	row := func(label string, e fabmetrics.MetricExtremes) {
		t.Row(label,
			fmt.Sprintf("%s (%s)", num(e.Min), names[e.MinID]),
			fmt.Sprintf("%s (%s)", num(e.Max), names[e.MaxID]))
	}
	row("cost", s.Cost)
	row("power", s.Power)
	row("latency", s.Latency)
	row("rack U", s.RackUnits)
	row("cables", s.Cables)

	return t.String()
}
