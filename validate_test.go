package fabmetrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigurationAccepts(t *testing.T) {
	assert.NoError(t, ValidateConfiguration(sampleConfig()))
	assert.NoError(t, ValidateConfiguration(legacyConfig()))
	assert.NoError(t, ValidateConfiguration(railOnlyConfig()))
	assert.NoError(t, ValidateConfiguration(&TopologyConfiguration{NumSpines: 1, NumLeafs: 2, NumTiers: 3}))
}

func TestValidateConfigurationMissing(t *testing.T) {
	err := ValidateConfiguration(nil)
	assert.ErrorIs(t, err, ErrMissingConfiguration)
	assert.False(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestValidateConfigurationRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *TopologyConfiguration)
		want   string
	}{
		{
			name:   "too few leafs",
			modify: func(cfg *TopologyConfiguration) { cfg.NumLeafs = 1 },
			want:   "NumLeafs",
		},
		{
			name:   "negative spines",
			modify: func(cfg *TopologyConfiguration) { cfg.NumSpines = -1 },
			want:   "NumSpines",
		},
		{
			name:   "four tiers",
			modify: func(cfg *TopologyConfiguration) { cfg.NumTiers = 4 },
			want:   "NumTiers",
		},
		{
			name:   "spines in a single tier",
			modify: func(cfg *TopologyConfiguration) { cfg.NumTiers = 1 },
			want:   "single-tier",
		},
		{
			name:   "no spines in two tiers",
			modify: func(cfg *TopologyConfiguration) { cfg.NumSpines = 0 },
			want:   "at least one spine",
		},
		{
			name:   "negative port count",
			modify: func(cfg *TopologyConfiguration) { cfg.LeafConfig.PortCount = -4 },
			want:   "PortCount",
		},
		{
			name:   "negative optics price",
			modify: func(cfg *TopologyConfiguration) { cfg.OpticsCost["25G"] = -1 },
			want:   "OpticsCost",
		},
		{
			name:   "negative switch cost",
			modify: func(cfg *TopologyConfiguration) { cfg.SwitchCost.Leaf = -10 },
			want:   "SwitchCost.Leaf",
		},
		{
			name:   "unparsable spine breakout",
			modify: func(cfg *TopologyConfiguration) { cfg.SpineConfig.BreakoutMode = "fast" },
			want:   "SpineConfig.BreakoutMode",
		},
		{
			name:   "zero factor leaf breakout",
			modify: func(cfg *TopologyConfiguration) { cfg.LeafConfig.BreakoutMode = "0x10G" },
			want:   "LeafConfig.BreakoutMode",
		},
		{
			name: "factor disagrees with label",
			modify: func(cfg *TopologyConfiguration) {
				cfg.BreakoutOptions.BySpeed["100G"][1].Factor = 2
			},
			want: "BreakoutOptions[100G][1]",
		},
		{
			name: "unparsable option label",
			modify: func(cfg *TopologyConfiguration) {
				cfg.BreakoutOptions.BySpeed["10G"] = append(cfg.BreakoutOptions.BySpeed["10G"], BreakoutOption{Type: "split"})
			},
			want: "BreakoutOptions[10G][1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleConfig()
			tt.modify(cfg)

			err := ValidateConfiguration(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateConfigurationReportsAll(t *testing.T) {
	cfg := sampleConfig()
	cfg.NumLeafs = 0
	cfg.SpineConfig.BreakoutMode = "fast"
	cfg.LatencyParameters.FiberLatency = -1

	err := ValidateConfiguration(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NumLeafs")
	assert.Contains(t, err.Error(), "SpineConfig.BreakoutMode")
	assert.Contains(t, err.Error(), "FiberLatency")
}

func TestValidateLegacyLinkTypes(t *testing.T) {
	cfg := legacyConfig()
	cfg.LinkTypes = append(cfg.LinkTypes, LinkType{Count: 3})

	err := ValidateConfiguration(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LinkTypes[2].Type")
}

// metrics stay defined for configurations validation rejects
func TestMetricsTotalOnInvalidConfiguration(t *testing.T) {
	cfg := sampleConfig()
	cfg.NumSpines = 0
	require.Error(t, ValidateConfiguration(cfg))

	m := CalculateAllMetrics(&Topology{ID: "x", Configuration: cfg})
	require.NotNil(t, m)
	assert.True(t, m.Oversubscription.Unbounded)
	assert.Equal(t, 8, m.DeviceCount.Total)
}
