package fabmetrics

import (
	"fmt"
	"testing"

	"github.com/iti/rngstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOversubscriptionScenario(t *testing.T) {
	om := CalculateOversubscription(sampleConfig())

	assert.Equal(t, 4, om.UplinkPortsPerLeaf)
	assert.Equal(t, 400, om.UplinkCapacityPerLeaf)
	assert.Equal(t, 3200, om.TotalUplinkCapacity)
	assert.Equal(t, 44, om.DownlinkPortsPerLeaf)
	assert.Equal(t, 440, om.DownlinkCapacityPerLeaf)
	assert.Equal(t, 3520, om.TotalDownlinkCapacity)
	assert.Equal(t, "1.10", om.Ratio)
	assert.False(t, om.Unbounded)

	value, ok := om.Value()
	require.True(t, ok)
	assert.InDelta(t, 1.1, value, 1e-12)
}

func TestOversubscriptionSpineBreakout(t *testing.T) {
	cfg := sampleConfig()
	cfg.SpineConfig.BreakoutMode = "4x25G"

	om := CalculateOversubscription(cfg)
	assert.Equal(t, 4, om.SpineBreakoutFactor)
	assert.Equal(t, 1, om.UplinkPortsPerLeaf)
	assert.Equal(t, 800, om.TotalUplinkCapacity)
	assert.Equal(t, 47, om.DownlinkPortsPerLeaf)
	assert.Equal(t, 3760, om.TotalDownlinkCapacity)
	assert.Equal(t, "4.70", om.Ratio)
}

func TestOversubscriptionLeafBreakoutKeepsBandwidth(t *testing.T) {
	cfg := sampleConfig()
	cfg.LeafConfig.DownlinkSpeed = "100G"
	cfg.LeafConfig.BreakoutMode = "4x25G"

	om := CalculateOversubscription(cfg)
	assert.Equal(t, 4, om.LeafBreakoutFactor)
	assert.Equal(t, 44, om.DownlinkPortsPerLeaf)
	assert.Equal(t, 176, om.DownlinkLogicalPorts)
	assert.Equal(t, 44*100*8, om.TotalDownlinkCapacity)
	assert.Equal(t, "11.00", om.Ratio)
}

func TestOversubscriptionNonBlocking(t *testing.T) {
	// 32 ports per leaf, 16 up at 100G and 16 down at 100G
	cfg := sampleConfig()
	cfg.NumSpines = 16
	cfg.LeafConfig = &LeafConfig{PortCount: 32, DownlinkSpeed: "100G", BreakoutMode: "1x100G"}

	assert.Equal(t, "1.00", CalculateOversubscription(cfg).Ratio)
}

func TestOversubscriptionUnbounded(t *testing.T) {
	om := CalculateOversubscription(railOnlyConfig())
	assert.True(t, om.Unbounded)
	assert.Equal(t, UnboundedRatio, om.Ratio)
	assert.Zero(t, om.TotalUplinkCapacity)
	assert.Equal(t, 48*10*8, om.TotalDownlinkCapacity)

	_, ok := om.Value()
	assert.False(t, ok)
}

func TestOversubscriptionUplinksExhaustLeaf(t *testing.T) {
	cfg := sampleConfig()
	cfg.NumSpines = 64

	om := CalculateOversubscription(cfg)
	assert.Equal(t, 64, om.UplinkPortsPerLeaf)
	assert.Zero(t, om.DownlinkPortsPerLeaf)
	assert.Equal(t, "0.00", om.Ratio)
	assert.False(t, om.Unbounded)
}

func TestOversubscriptionLegacy(t *testing.T) {
	om := CalculateOversubscription(legacyConfig())

	assert.Equal(t, 6, om.UplinkPortsPerLeaf)
	assert.Equal(t, 800, om.SpineSpeedGbps)
	assert.Equal(t, 19200, om.TotalUplinkCapacity)
	assert.Equal(t, 42, om.DownlinkPortsPerLeaf)
	assert.Equal(t, 16800, om.TotalDownlinkCapacity)
	assert.Equal(t, "0.88", om.Ratio)
}

// adding a leaf port while downlink ports remain strictly raises the ratio
func TestOversubscriptionMonotonicInLeafPorts(t *testing.T) {
	rng := rngstream.New("oversubscription")
	draw := func(lo, span int) int {
		return lo + int(rng.RandU01()*float64(span))
	}

	for trial := 0; trial < 200; trial++ {
		cfg := sampleConfig()
		cfg.NumSpines = draw(1, 32)
		cfg.NumLeafs = draw(2, 64)
		cfg.LeafConfig.PortCount = cfg.NumSpines + draw(1, 64)

		before := CalculateOversubscription(cfg)
		cfg.LeafConfig.PortCount += 1
		after := CalculateOversubscription(cfg)

		require.Positive(t, before.DownlinkPortsPerLeaf)
		lo, ok := before.Value()
		require.True(t, ok)
		hi, ok := after.Value()
		require.True(t, ok)
		assert.Greater(t, hi, lo, fmt.Sprintf("spines %d leafs %d ports %d", cfg.NumSpines, cfg.NumLeafs, cfg.LeafConfig.PortCount))
	}
}
