package fabmetrics

// normalize.go resolves a possibly partial, possibly legacy configuration into
// the single canonical form every metric model works from.

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// defaults applied when a configuration carries no spine or leaf description
const (
	DefaultSpinePortCount    = 64
	DefaultSpinePortSpeed    = "800G"
	DefaultSpineBreakoutMode = "1x800G"

	DefaultLeafPortCount     = 48
	DefaultLeafDownlinkSpeed = "100G"
	DefaultLeafBreakoutMode  = "1x100G"
)

// SchemaKind identifies which of the two record shapes a configuration arrived in
type SchemaKind int

const (
	// SchemaCurrent records carry breakout options keyed by port speed
	SchemaCurrent SchemaKind = iota

	// SchemaLegacy records carry linkTypes and a flat list of breakout labels
	SchemaLegacy
)

var schemaToStr map[SchemaKind]string = map[SchemaKind]string{SchemaCurrent: "current", SchemaLegacy: "legacy"}

func (sk SchemaKind) String() string {
	return schemaToStr[sk]
}

// NormalizedConfig is a complete, defaulted copy of a TopologyConfiguration.
// It shares no maps or slices with the configuration it was built from.
// Breakouts is populated only for SchemaCurrent, LinkTypes and LegacyBreakouts
// only for SchemaLegacy.
type NormalizedConfig struct {
	Schema SchemaKind

	NumSpines int
	NumLeafs  int
	NumTiers  int

	Spine SpineConfig
	Leaf  LeafConfig

	Breakouts       map[string][]BreakoutOption
	LinkTypes       []LinkType
	LegacyBreakouts []LegacyBreakout

	SwitchCost SwitchCost
	OpticsCost map[string]float64
	PowerUsage PowerUsage
	Latency    LatencyParameters
	RackSpace  RackSpaceParameters
}

// ClassifySchema reports which record shape cfg uses.  Speed-keyed breakout
// options mark a current record; otherwise linkTypes or array-shaped breakout
// options mark a legacy one.  A record with neither is treated as current.
func ClassifySchema(cfg *TopologyConfiguration) SchemaKind {
	if cfg == nil || cfg.BreakoutOptions.BySpeed != nil {
		return SchemaCurrent
	}
	if len(cfg.LinkTypes) > 0 || cfg.BreakoutOptions.IsLegacy() {
		return SchemaLegacy
	}

	return SchemaCurrent
}

// NormalizeConfiguration returns a new, defaulted value built from cfg.  cfg is
// only read.  A nil cfg normalizes to an empty fabric with default port descriptions.
func NormalizeConfiguration(cfg *TopologyConfiguration) NormalizedConfig {
	nc := NormalizedConfig{
		Spine:      defaultSpine(nil),
		Leaf:       defaultLeaf(nil),
		Breakouts:  make(map[string][]BreakoutOption),
		OpticsCost: make(map[string]float64),
		PowerUsage: PowerUsage{Optics: make(map[string]float64)},
	}
	if cfg == nil {
		return nc
	}

	nc.Schema = ClassifySchema(cfg)
	nc.NumSpines = cfg.NumSpines
	nc.NumLeafs = cfg.NumLeafs
	nc.NumTiers = cfg.NumTiers
	nc.Spine = defaultSpine(cfg.SpineConfig)
	nc.Leaf = defaultLeaf(cfg.LeafConfig)

	switch nc.Schema {
	case SchemaCurrent:
		for speed, opts := range cfg.BreakoutOptions.BySpeed {
			nc.Breakouts[speed] = slices.Clone(opts)
		}
	case SchemaLegacy:
		nc.LinkTypes = slices.Clone(cfg.LinkTypes)
		nc.LegacyBreakouts = slices.Clone(cfg.BreakoutOptions.Legacy)
	}

	nc.SwitchCost = cfg.SwitchCost
	if cfg.OpticsCost != nil {
		nc.OpticsCost = maps.Clone(cfg.OpticsCost)
	}

	nc.PowerUsage.Spine = cfg.PowerUsage.Spine
	nc.PowerUsage.Leaf = cfg.PowerUsage.Leaf
	if cfg.PowerUsage.Optics != nil {
		nc.PowerUsage.Optics = maps.Clone(cfg.PowerUsage.Optics)
	}

	nc.Latency = cfg.LatencyParameters
	nc.RackSpace = cfg.RackSpaceParameters

	return nc
}

// defaultSpine copies sc, filling in whatever it leaves unset
func defaultSpine(sc *SpineConfig) SpineConfig {
	spine := SpineConfig{
		PortCount:    DefaultSpinePortCount,
		PortSpeed:    DefaultSpinePortSpeed,
		BreakoutMode: DefaultSpineBreakoutMode,
	}
	if sc == nil {
		return spine
	}

	if sc.PortCount > 0 {
		spine.PortCount = sc.PortCount
	}
	if len(sc.PortSpeed) > 0 {
		spine.PortSpeed = sc.PortSpeed
	}
	if len(sc.BreakoutMode) > 0 {
		spine.BreakoutMode = sc.BreakoutMode
	}

	return spine
}

// defaultLeaf copies lc, filling in whatever it leaves unset
func defaultLeaf(lc *LeafConfig) LeafConfig {
	leaf := LeafConfig{
		PortCount:     DefaultLeafPortCount,
		DownlinkSpeed: DefaultLeafDownlinkSpeed,
		BreakoutMode:  DefaultLeafBreakoutMode,
	}
	if lc == nil {
		return leaf
	}

	if lc.PortCount > 0 {
		leaf.PortCount = lc.PortCount
	}
	if len(lc.DownlinkSpeed) > 0 {
		leaf.DownlinkSpeed = lc.DownlinkSpeed
	}
	if len(lc.BreakoutMode) > 0 {
		leaf.BreakoutMode = lc.BreakoutMode
	}

	return leaf
}
