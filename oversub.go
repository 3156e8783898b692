package fabmetrics

// oversub.go holds the oversubscription model: aggregate server-facing
// bandwidth of the leaf tier against its aggregate bandwidth toward the spines.

import (
	"strconv"
)

// UnboundedRatio is reported as the ratio of a fabric with no uplink capacity,
// e.g. a single-tier fabric without spines
const UnboundedRatio = "∞"

// OversubscriptionMetrics reports the downlink to uplink ratio along with the port
// counts and capacities (Gbps) it was computed from
type OversubscriptionMetrics struct {
	// ratio to two decimal places, or UnboundedRatio
	Ratio string `json:"ratio" yaml:"ratio"`

	// true exactly when Ratio is UnboundedRatio
	Unbounded bool `json:"unbounded" yaml:"unbounded"`

	SpineSpeedGbps      int `json:"spineSpeedGbps" yaml:"spineSpeedGbps"`
	SpineBreakoutFactor int `json:"spineBreakoutFactor" yaml:"spineBreakoutFactor"`
	DownlinkSpeedGbps   int `json:"downlinkSpeedGbps" yaml:"downlinkSpeedGbps"`
	LeafBreakoutFactor  int `json:"leafBreakoutFactor" yaml:"leafBreakoutFactor"`

	UplinkPortsPerLeaf   int `json:"uplinkPortsPerLeaf" yaml:"uplinkPortsPerLeaf"`
	DownlinkPortsPerLeaf int `json:"downlinkPortsPerLeaf" yaml:"downlinkPortsPerLeaf"`

	// server-facing ports per leaf once breakout is applied
	DownlinkLogicalPorts int `json:"downlinkLogicalPorts" yaml:"downlinkLogicalPorts"`

	UplinkCapacityPerLeaf   int `json:"uplinkCapacityPerLeaf" yaml:"uplinkCapacityPerLeaf"`
	TotalUplinkCapacity     int `json:"totalUplinkCapacity" yaml:"totalUplinkCapacity"`
	DownlinkCapacityPerLeaf int `json:"downlinkCapacityPerLeaf" yaml:"downlinkCapacityPerLeaf"`
	TotalDownlinkCapacity   int `json:"totalDownlinkCapacity" yaml:"totalDownlinkCapacity"`
}

// Value returns the unrounded ratio, and false if the ratio is unbounded
func (om OversubscriptionMetrics) Value() (float64, bool) {
	if om.Unbounded || om.TotalUplinkCapacity == 0 {
		return 0, false
	}
	return float64(om.TotalDownlinkCapacity) / float64(om.TotalUplinkCapacity), true
}

// CalculateOversubscription returns the oversubscription of the leaf tier of cfg
func CalculateOversubscription(cfg *TopologyConfiguration) OversubscriptionMetrics {
	nc := NormalizeConfiguration(cfg)
	return nc.oversubscription()
}

// oversubscription computes the ratio from first principles.  Every leaf reaches
// every spine; one physical spine port broken out f ways serves f leaves, so a
// leaf needs ceil(numSpines/f) physical uplink ports running at the spine port
// speed.  Legacy records instead give the uplink count directly through linkTypes.
// Whatever ports remain on the leaf face servers.  Leaf breakout multiplies the
// number of server-facing ports but leaves their aggregate bandwidth unchanged.
func (nc *NormalizedConfig) oversubscription() OversubscriptionMetrics {
	spine := nc.spineBreakout()
	leaf := nc.leafBreakout()

	om := OversubscriptionMetrics{
		SpineSpeedGbps:      ParseSpeedGbps(nc.Spine.PortSpeed),
		SpineBreakoutFactor: spine.Factor,
		DownlinkSpeedGbps:   ParseSpeedGbps(nc.Leaf.DownlinkSpeed),
		LeafBreakoutFactor:  leaf.Factor,
	}

	if nc.Schema == SchemaLegacy {
		for _, lt := range nc.LinkTypes {
			om.UplinkPortsPerLeaf += lt.Count * nc.NumSpines
		}
	} else {
		om.UplinkPortsPerLeaf = ceilDiv(nc.NumSpines, spine.Factor)
	}

	om.UplinkCapacityPerLeaf = om.UplinkPortsPerLeaf * om.SpineSpeedGbps
	om.TotalUplinkCapacity = om.UplinkCapacityPerLeaf * nc.NumLeafs

	om.DownlinkPortsPerLeaf = max(0, nc.Leaf.PortCount-om.UplinkPortsPerLeaf)
	om.DownlinkLogicalPorts = om.DownlinkPortsPerLeaf * leaf.Factor
	om.DownlinkCapacityPerLeaf = om.DownlinkPortsPerLeaf * om.DownlinkSpeedGbps
	om.TotalDownlinkCapacity = om.DownlinkCapacityPerLeaf * nc.NumLeafs

	if om.TotalUplinkCapacity == 0 {
		om.Ratio = UnboundedRatio
		om.Unbounded = true

		return om
	}

	ratio := float64(om.TotalDownlinkCapacity) / float64(om.TotalUplinkCapacity)
	om.Ratio = strconv.FormatFloat(ratio, 'f', 2, 64)

	return om
}
