package fabmetrics

// metrics.go holds the device count, cost, power, latency, rack space and
// cabling models.  Each exported Calculate function accepts a configuration in
// either record shape; the unexported forms work on an already normalized one.

// FiberSegmentKm is the assumed fiber length of one hop: 10 m.  Nothing measures
// it, so the fiber contribution to latency is an estimate.
const FiberSegmentKm = 0.01

// RackUnitsPerRack is the height of the standard rack the footprint is packed into
const RackUnitsPerRack = 42

// DeviceCount gives the number of switches in the fabric
type DeviceCount struct {
	Spines int `json:"spines" yaml:"spines"`
	Leafs  int `json:"leafs" yaml:"leafs"`
	Total  int `json:"total" yaml:"total"`
}

// SwitchBreakdown splits a switch-related quantity (cost, power) by tier
type SwitchBreakdown struct {
	Spine float64 `json:"spine" yaml:"spine"`
	Leaf  float64 `json:"leaf" yaml:"leaf"`
	Total float64 `json:"total" yaml:"total"`
}

// CostMetrics is the capital cost of the switches and of the optics joining them
type CostMetrics struct {
	Switches SwitchBreakdown `json:"switches" yaml:"switches"`
	Optics   float64         `json:"optics" yaml:"optics"`

	// number of optics priced
	OpticsCount int `json:"opticsCount" yaml:"opticsCount"`

	// speed label the optics were priced at; empty for legacy records, which price per link type
	WireSpeed string `json:"wireSpeed,omitempty" yaml:"wireSpeed,omitempty"`

	Total float64 `json:"total" yaml:"total"`
}

// PowerMetrics is the power draw of the switches and of the optics joining them
type PowerMetrics struct {
	Switches    SwitchBreakdown `json:"switches" yaml:"switches"`
	Optics      float64         `json:"optics" yaml:"optics"`
	OpticsCount int             `json:"opticsCount" yaml:"opticsCount"`
	WireSpeed   string          `json:"wireSpeed,omitempty" yaml:"wireSpeed,omitempty"`
	Total       float64         `json:"total" yaml:"total"`
}

// LatencyMetrics is the worst-case leaf-to-leaf latency estimate
type LatencyMetrics struct {
	Hops   int     `json:"hops" yaml:"hops"`
	Switch float64 `json:"switch" yaml:"switch"`
	Fiber  float64 `json:"fiber" yaml:"fiber"`
	Total  float64 `json:"total" yaml:"total"`
}

// RackSpaceMetrics is the rack footprint of the switches
type RackSpaceMetrics struct {
	SpineRackUnits int `json:"spineRackUnits" yaml:"spineRackUnits"`
	LeafRackUnits  int `json:"leafRackUnits" yaml:"leafRackUnits"`
	TotalRackUnits int `json:"totalRackUnits" yaml:"totalRackUnits"`
	RacksNeeded    int `json:"racksNeeded" yaml:"racksNeeded"`
}

// CablingMetrics counts the physical cables between the spine and leaf tiers
type CablingMetrics struct {
	LogicalLinks int `json:"logicalLinks" yaml:"logicalLinks"`
	Standard     int `json:"standard" yaml:"standard"`
	Breakout     int `json:"breakout" yaml:"breakout"`
	Total        int `json:"total" yaml:"total"`
}

// ceilDiv returns the ceiling of num/den for num >= 0, den >= 1
func ceilDiv(num, den int) int {
	if num <= 0 {
		return 0
	}
	return (num + den - 1) / den
}

// logicalLinks is the number of spine/leaf adjacencies of a full-mesh Clos fabric
func (nc *NormalizedConfig) logicalLinks() int {
	return nc.NumSpines * nc.NumLeafs
}

// CalculateDeviceCount returns the number of switches described by cfg
func CalculateDeviceCount(cfg *TopologyConfiguration) DeviceCount {
	nc := NormalizeConfiguration(cfg)
	return nc.deviceCount()
}

func (nc *NormalizedConfig) deviceCount() DeviceCount {
	return DeviceCount{
		Spines: nc.NumSpines,
		Leafs:  nc.NumLeafs,
		Total:  nc.NumSpines + nc.NumLeafs,
	}
}

// switchBreakdown applies a per-spine and per-leaf quantity to the switch counts
func (nc *NormalizedConfig) switchBreakdown(perSpine, perLeaf float64) SwitchBreakdown {
	spine := float64(nc.NumSpines) * perSpine
	leaf := float64(nc.NumLeafs) * perLeaf

	return SwitchBreakdown{Spine: spine, Leaf: leaf, Total: spine + leaf}
}

// opticsTotal accounts for the optics at both ends of every spine/leaf link, each
// valued by perOptic keyed on speed label.  A speed with no entry contributes nothing.
//
// Current records: one logical link per spine/leaf pair, optics at the wire speed
// of the spine breakout.  Legacy records: entry.count links per pair for every
// link type, optics at the link type's speed.
func (nc *NormalizedConfig) opticsTotal(perOptic map[string]float64) (total float64, count int, wireSpeed string) {
	if nc.Schema == SchemaLegacy {
		for _, lt := range nc.LinkTypes {
			totalLinks := nc.logicalLinks() * lt.Count
			opticsNeeded := totalLinks * 2
			count += opticsNeeded
			total += float64(opticsNeeded) * perOptic[lt.Type]
		}
		return total, count, ""
	}

	resolved := nc.spineBreakout()
	count = nc.logicalLinks() * 2

	return float64(count) * perOptic[resolved.WireSpeed], count, resolved.WireSpeed
}

// CalculateCost returns the capital cost of the switches and optics described by cfg
func CalculateCost(cfg *TopologyConfiguration) CostMetrics {
	nc := NormalizeConfiguration(cfg)
	return nc.cost()
}

func (nc *NormalizedConfig) cost() CostMetrics {
	switches := nc.switchBreakdown(nc.SwitchCost.Spine, nc.SwitchCost.Leaf)
	optics, count, wireSpeed := nc.opticsTotal(nc.OpticsCost)

	return CostMetrics{
		Switches:    switches,
		Optics:      optics,
		OpticsCount: count,
		WireSpeed:   wireSpeed,
		Total:       switches.Total + optics,
	}
}

// CalculatePowerUsage returns the power drawn by the switches and optics described by cfg
func CalculatePowerUsage(cfg *TopologyConfiguration) PowerMetrics {
	nc := NormalizeConfiguration(cfg)
	return nc.power()
}

func (nc *NormalizedConfig) power() PowerMetrics {
	switches := nc.switchBreakdown(nc.PowerUsage.Spine, nc.PowerUsage.Leaf)
	optics, count, wireSpeed := nc.opticsTotal(nc.PowerUsage.Optics)

	return PowerMetrics{
		Switches:    switches,
		Optics:      optics,
		OpticsCount: count,
		WireSpeed:   wireSpeed,
		Total:       switches.Total + optics,
	}
}

// CalculateLatency returns the worst-case latency estimate for cfg.  A path from
// one leaf to another crosses 2*numTiers hops, each with one switch traversal and
// FiberSegmentKm of fiber.
func CalculateLatency(cfg *TopologyConfiguration) LatencyMetrics {
	nc := NormalizeConfiguration(cfg)
	return nc.latency()
}

func (nc *NormalizedConfig) latency() LatencyMetrics {
	hops := nc.NumTiers * 2
	switchLatency := float64(hops) * nc.Latency.SwitchLatency
	fiberLatency := float64(hops) * FiberSegmentKm * nc.Latency.FiberLatency

	return LatencyMetrics{
		Hops:   hops,
		Switch: switchLatency,
		Fiber:  fiberLatency,
		Total:  switchLatency + fiberLatency,
	}
}

// CalculateRackSpace returns the rack units and number of RackUnitsPerRack racks cfg occupies
func CalculateRackSpace(cfg *TopologyConfiguration) RackSpaceMetrics {
	nc := NormalizeConfiguration(cfg)
	return nc.rackSpace()
}

func (nc *NormalizedConfig) rackSpace() RackSpaceMetrics {
	spineUnits := nc.NumSpines * nc.RackSpace.SpineRackUnits
	leafUnits := nc.NumLeafs * nc.RackSpace.LeafRackUnits
	total := spineUnits + leafUnits

	return RackSpaceMetrics{
		SpineRackUnits: spineUnits,
		LeafRackUnits:  leafUnits,
		TotalRackUnits: total,
		RacksNeeded:    ceilDiv(total, RackUnitsPerRack),
	}
}

// CalculateCabling returns the number of physical cables joining the tiers of cfg.
// A breakout cable carries as many logical links as the breakout factor.
func CalculateCabling(cfg *TopologyConfiguration) CablingMetrics {
	nc := NormalizeConfiguration(cfg)
	return nc.cabling()
}

func (nc *NormalizedConfig) cabling() CablingMetrics {
	cm := CablingMetrics{LogicalLinks: nc.logicalLinks()}

	if nc.Schema == SchemaLegacy {
		cm.LogicalLinks = 0
		for _, lt := range nc.LinkTypes {
			totalLinks := nc.logicalLinks() * lt.Count
			cm.LogicalLinks += totalLinks

			factor, found := nc.legacyBreakoutFactor(lt.Type)
			if found {
				cm.Breakout += ceilDiv(totalLinks, factor)
			} else {
				cm.Standard += totalLinks
			}
		}
		cm.Total = cm.Standard + cm.Breakout

		return cm
	}

	resolved := nc.spineBreakout()
	if resolved.Factor > 1 {
		cm.Breakout = ceilDiv(cm.LogicalLinks, resolved.Factor)
	} else {
		cm.Standard = cm.LogicalLinks
	}
	cm.Total = cm.Standard + cm.Breakout

	return cm
}
