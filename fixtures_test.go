package fabmetrics

// sampleConfig is a current-shape two-tier fabric: 4 spines with 32x100G ports,
// 8 leafs with 48x10G ports.
func sampleConfig() *TopologyConfiguration {
	return &TopologyConfiguration{
		NumSpines:   4,
		NumLeafs:    8,
		NumTiers:    2,
		SpineConfig: &SpineConfig{PortCount: 32, PortSpeed: "100G", BreakoutMode: "1x100G"},
		LeafConfig:  &LeafConfig{PortCount: 48, DownlinkSpeed: "10G", BreakoutMode: "1x10G"},
		BreakoutOptions: BreakoutOptions{BySpeed: map[string][]BreakoutOption{
			"100G": {{Type: "1x100G", Factor: 1}, {Type: "4x25G", Factor: 4}},
			"10G":  {{Type: "1x10G", Factor: 1}},
		}},
		SwitchCost: SwitchCost{Spine: 20000, Leaf: 8000},
		OpticsCost: map[string]float64{"100G": 200, "25G": 60, "10G": 20},
		PowerUsage: PowerUsage{
			Spine:  500,
			Leaf:   250,
			Optics: map[string]float64{"100G": 4.5, "25G": 1.5},
		},
		LatencyParameters:   LatencyParameters{SwitchLatency: 0.5, FiberLatency: 5},
		RackSpaceParameters: RackSpaceParameters{SpineRackUnits: 2, LeafRackUnits: 1},
	}
}

// legacyConfig is a legacy-shape fabric of 2 spines and 4 leafs joined by two
// 100G links and one 25G link per pair, with only 4x25G breakout enabled.
// It carries no spine or leaf description.
func legacyConfig() *TopologyConfiguration {
	return &TopologyConfiguration{
		NumSpines: 2,
		NumLeafs:  4,
		NumTiers:  2,
		LinkTypes: []LinkType{{Type: "100G", Count: 2}, {Type: "25G", Count: 1}},
		BreakoutOptions: BreakoutOptions{Legacy: []LegacyBreakout{
			{Type: "4x25G", Enabled: true},
			{Type: "2x100G", Enabled: false},
		}},
		SwitchCost: SwitchCost{Spine: 40000, Leaf: 10000},
		OpticsCost: map[string]float64{"100G": 200, "25G": 60},
		PowerUsage: PowerUsage{
			Spine:  400,
			Leaf:   150,
			Optics: map[string]float64{"100G": 4, "25G": 2},
		},
		LatencyParameters:   LatencyParameters{SwitchLatency: 1, FiberLatency: 5},
		RackSpaceParameters: RackSpaceParameters{SpineRackUnits: 2, LeafRackUnits: 1},
	}
}

// railOnlyConfig is a single-tier fabric of leafs and no spines
func railOnlyConfig() *TopologyConfiguration {
	cfg := sampleConfig()
	cfg.NumSpines = 0
	cfg.NumTiers = 1

	return cfg
}
