package fabmetrics

// desc-topo.go holds the serializable description of a Clos fabric topology,
// dictionaries of such descriptions, and the json/yaml file i/o that moves
// them to and from disk.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SpineConfig describes the ports of every spine switch in the fabric.
type SpineConfig struct {
	// number of physical ports on a spine
	PortCount int `json:"portCount" yaml:"portCount" validate:"gte=0"`

	// speed label of a spine port, e.g. "800G"
	PortSpeed string `json:"portSpeed" yaml:"portSpeed"`

	// breakout label applied to spine ports, e.g. "1x800G" or "4x200G"
	BreakoutMode string `json:"breakoutMode" yaml:"breakoutMode"`
}

// LeafConfig describes the ports of every leaf switch in the fabric.
type LeafConfig struct {
	PortCount     int    `json:"portCount" yaml:"portCount" validate:"gte=0"`
	DownlinkSpeed string `json:"downlinkSpeed" yaml:"downlinkSpeed"`
	BreakoutMode  string `json:"breakoutMode" yaml:"breakoutMode"`
}

// A BreakoutOption describes one way a physical port of some speed may be split.
// Type is a label "<factor>x<speed>", Factor the number of logical ports produced.
type BreakoutOption struct {
	Type   string `json:"type" yaml:"type"`
	Factor int    `json:"factor" yaml:"factor" validate:"gte=0"`
}

// LegacyBreakout is the breakout description carried by records written before
// breakout options were keyed by port speed.
type LegacyBreakout struct {
	Type    string `json:"type" yaml:"type"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// LinkType is a legacy description of the links between every spine/leaf pair:
// Count links of speed Type.
type LinkType struct {
	Type  string `json:"type" yaml:"type" validate:"required"`
	Count int    `json:"count" yaml:"count" validate:"gte=0"`
}

// SwitchCost holds the unit price of a spine and of a leaf switch
type SwitchCost struct {
	Spine float64 `json:"spine" yaml:"spine" validate:"gte=0"`
	Leaf  float64 `json:"leaf" yaml:"leaf" validate:"gte=0"`
}

// PowerUsage holds the draw (watts) of a spine, a leaf, and of one optic per speed label
type PowerUsage struct {
	Spine  float64            `json:"spine" yaml:"spine" validate:"gte=0"`
	Leaf   float64            `json:"leaf" yaml:"leaf" validate:"gte=0"`
	Optics map[string]float64 `json:"optics,omitempty" yaml:"optics,omitempty" validate:"omitempty,dive,gte=0"`
}

// LatencyParameters gives the per-switch traversal latency and the fiber latency per km
type LatencyParameters struct {
	SwitchLatency float64 `json:"switchLatency" yaml:"switchLatency" validate:"gte=0"`
	FiberLatency  float64 `json:"fiberLatency" yaml:"fiberLatency" validate:"gte=0"`
}

// RackSpaceParameters gives the rack units consumed by one spine and one leaf
type RackSpaceParameters struct {
	SpineRackUnits int `json:"spineRackUnits" yaml:"spineRackUnits" validate:"gte=0"`
	LeafRackUnits  int `json:"leafRackUnits" yaml:"leafRackUnits" validate:"gte=0"`
}

// BreakoutOptions holds the breakout description of a configuration in one of two shapes.
// Current records key a list of options by port speed (BySpeed); legacy records carry
// a flat list of enabled/disabled labels (Legacy). At most one of the two is non-nil.
// Decoding picks the shape from the document (mapping or sequence), encoding writes
// back whichever shape is present.
type BreakoutOptions struct {
	BySpeed map[string][]BreakoutOption `validate:"omitempty,dive,dive"`
	Legacy  []LegacyBreakout
}

// IsLegacy reports whether the options are in the array shape
func (bo BreakoutOptions) IsLegacy() bool {
	return bo.BySpeed == nil && bo.Legacy != nil
}

// IsZero reports whether neither shape is present. Used by yaml's omitempty.
func (bo BreakoutOptions) IsZero() bool {
	return bo.BySpeed == nil && bo.Legacy == nil
}

// MarshalJSON writes whichever shape is present, null if neither
func (bo BreakoutOptions) MarshalJSON() ([]byte, error) {
	if bo.BySpeed != nil {
		return json.Marshal(bo.BySpeed)
	}
	if bo.Legacy != nil {
		return json.Marshal(bo.Legacy)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts either an object keyed by speed or an array of legacy entries
func (bo *BreakoutOptions) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*bo = BreakoutOptions{}

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '{':
		bySpeed := make(map[string][]BreakoutOption)
		if err := json.Unmarshal(trimmed, &bySpeed); err != nil {
			return fmt.Errorf("breakoutOptions: %w", err)
		}
		bo.BySpeed = bySpeed
	case '[':
		legacy := make([]LegacyBreakout, 0)
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return fmt.Errorf("breakoutOptions: %w", err)
		}
		bo.Legacy = legacy
	default:
		return fmt.Errorf("breakoutOptions: expected object or array, found %q", string(trimmed[:1]))
	}

	return nil
}

// MarshalYAML writes whichever shape is present
func (bo BreakoutOptions) MarshalYAML() (any, error) {
	if bo.BySpeed != nil {
		return bo.BySpeed, nil
	}
	if bo.Legacy != nil {
		return bo.Legacy, nil
	}
	return nil, nil
}

// UnmarshalYAML accepts either a mapping keyed by speed or a sequence of legacy entries
func (bo *BreakoutOptions) UnmarshalYAML(value *yaml.Node) error {
	*bo = BreakoutOptions{}

	switch value.Kind {
	case yaml.MappingNode:
		bySpeed := make(map[string][]BreakoutOption)
		if err := value.Decode(&bySpeed); err != nil {
			return fmt.Errorf("breakoutOptions: %w", err)
		}
		bo.BySpeed = bySpeed
	case yaml.SequenceNode:
		legacy := make([]LegacyBreakout, 0)
		if err := value.Decode(&legacy); err != nil {
			return fmt.Errorf("breakoutOptions: %w", err)
		}
		bo.Legacy = legacy
	case yaml.ScalarNode:
		if value.ShortTag() != "!!null" {
			return fmt.Errorf("breakoutOptions: line %d: expected mapping or sequence", value.Line)
		}
	default:
		return fmt.Errorf("breakoutOptions: line %d: expected mapping or sequence", value.Line)
	}

	return nil
}

// TopologyConfiguration is the description of a fabric the metrics are computed from.
// A nil SpineConfig or LeafConfig means the record did not carry one; defaults are
// supplied at normalization. LinkTypes is present only on legacy records.
type TopologyConfiguration struct {
	NumSpines int `json:"numSpines" yaml:"numSpines" validate:"gte=0"`
	NumLeafs  int `json:"numLeafs" yaml:"numLeafs" validate:"gte=2"`
	NumTiers  int `json:"numTiers" yaml:"numTiers" validate:"oneof=1 2 3"`

	SpineConfig *SpineConfig `json:"spineConfig,omitempty" yaml:"spineConfig,omitempty"`
	LeafConfig  *LeafConfig  `json:"leafConfig,omitempty" yaml:"leafConfig,omitempty"`

	BreakoutOptions BreakoutOptions `json:"breakoutOptions" yaml:"breakoutOptions,omitempty"`
	LinkTypes       []LinkType      `json:"linkTypes,omitempty" yaml:"linkTypes,omitempty" validate:"omitempty,dive"`

	SwitchCost          SwitchCost          `json:"switchCost" yaml:"switchCost"`
	OpticsCost          map[string]float64  `json:"opticsCost,omitempty" yaml:"opticsCost,omitempty" validate:"omitempty,dive,gte=0"`
	PowerUsage          PowerUsage          `json:"powerUsage" yaml:"powerUsage"`
	LatencyParameters   LatencyParameters   `json:"latencyParameters" yaml:"latencyParameters"`
	RackSpaceParameters RackSpaceParameters `json:"rackSpaceParameters" yaml:"rackSpaceParameters"`
}

// Topology names a fabric configuration. It is owned by whatever stores it;
// nothing in this package modifies one after construction.
type Topology struct {
	ID            string                 `json:"id" yaml:"id"`
	Name          string                 `json:"name" yaml:"name"`
	Description   string                 `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt     time.Time              `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt" yaml:"updatedAt"`
	Configuration *TopologyConfiguration `json:"configuration" yaml:"configuration"`
}

// CreateTopology is a constructor.  It assigns a fresh identifier and stamps
// both creation and update times.
func CreateTopology(name, description string, cfg *TopologyConfiguration) *Topology {
	now := time.Now().UTC()

	return &Topology{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
		Configuration: cfg,
	}
}

// WriteToFile stores the Topology struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (t *Topology) WriteToFile(filename string) error {
	return writeDescToFile(filename, t)
}

// ReadTopology deserializes a byte slice holding a representation of a Topology struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.
func ReadTopology(filename string, useYAML bool, dict []byte) (*Topology, error) {
	example := Topology{}
	if err := readDesc(filename, useYAML, dict, &example); err != nil {
		return nil, err
	}

	return &example, nil
}

// A TopologyDict holds a named collection of topologies. Unlike a map it
// keeps the order in which topologies were added, which is the order
// they are compared in.
type TopologyDict struct {
	DictName   string     `json:"dictname" yaml:"dictname"`
	Topologies []Topology `json:"topologies" yaml:"topologies"`
}

// CreateTopologyDict is a constructor
func CreateTopologyDict(name string) *TopologyDict {
	return &TopologyDict{DictName: name, Topologies: make([]Topology, 0)}
}

// AddTopology includes a copy of the offered topology, optionally returning an
// error if one with the same ID is already held.  With overwrite set the held
// copy is replaced in place.
func (td *TopologyDict) AddTopology(t *Topology, overwrite bool) error {
	for idx := range td.Topologies {
		if td.Topologies[idx].ID != t.ID {
			continue
		}
		if !overwrite {
			return fmt.Errorf("attempt to overwrite topology %s in TopologyDict %s", t.ID, td.DictName)
		}
		td.Topologies[idx] = *t

		return nil
	}
	td.Topologies = append(td.Topologies, *t)

	return nil
}

// RecoverTopology returns the topology whose ID is given, and a flag
// denoting whether it was found
func (td *TopologyDict) RecoverTopology(id string) (*Topology, bool) {
	for idx := range td.Topologies {
		if td.Topologies[idx].ID == id {
			t := td.Topologies[idx]
			return &t, true
		}
	}

	return nil, false
}

// List returns pointers to the held topologies, in dictionary order
func (td *TopologyDict) List() []*Topology {
	list := make([]*Topology, len(td.Topologies))
	for idx := range td.Topologies {
		list[idx] = &td.Topologies[idx]
	}

	return list
}

// WriteToFile stores the TopologyDict struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (td *TopologyDict) WriteToFile(filename string) error {
	return writeDescToFile(filename, td)
}

// ReadTopologyDict deserializes a byte slice holding a representation of a TopologyDict struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.
func ReadTopologyDict(filename string, useYAML bool, dict []byte) (*TopologyDict, error) {
	example := TopologyDict{}
	if err := readDesc(filename, useYAML, dict, &example); err != nil {
		return nil, err
	}

	return &example, nil
}

// UseYAML reports whether the file name's extension selects yaml
func UseYAML(filename string) bool {
	switch path.Ext(filename) {
	case ".yaml", ".YAML", ".yml":
		return true
	}
	return false
}

// writeDescToFile serializes v to json or yaml, chosen by the extension of filename,
// and writes the result there.
func writeDescToFile(filename string, v any) error {
	pathExt := path.Ext(filename)
	var encoded []byte
	var merr error

	switch pathExt {
	case ".yaml", ".YAML", ".yml":
		encoded, merr = yaml.Marshal(v)
	case ".json", ".JSON":
		encoded, merr = json.MarshalIndent(v, "", "\t")
	default:
		return fmt.Errorf("file %s: extension %q selects neither json nor yaml", filename, pathExt)
	}

	if merr != nil {
		return fmt.Errorf("file %s: %w", filename, merr)
	}

	return os.WriteFile(filename, encoded, 0o644)
}

// readDesc deserializes dict into v, reading dict from filename first if it is empty
func readDesc(filename string, useYAML bool, dict []byte, v any) error {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return err
		}
	}

	if useYAML {
		err = yaml.Unmarshal(dict, v)
	} else {
		err = json.Unmarshal(dict, v)
	}

	if err != nil {
		return fmt.Errorf("decoding %s: %w", filename, err)
	}

	return nil
}

// ReportErrs transforms a list of errors and transforms the non-nil ones into a single error
// with comma-separated report of all the constituent errors, and returns it.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}

// CheckReadableFiles probes the file system to ensure that every
// one of the argument filenames exists and is readable
func CheckReadableFiles(names []string) (bool, error) {
	return CheckFiles(names, true)
}

// CheckOutputFiles probes the file system to ensure that every
// argument filename can be written.
func CheckOutputFiles(names []string) (bool, error) {
	return CheckFiles(names, false)
}

// CheckFiles probes the file system for permitted access to all the
// argument filenames, optionally checking also for the existence
// of those files for the purposes of reading them.
func CheckFiles(names []string, checkExistence bool) (bool, error) {
	errs := make([]error, 0)

	for _, name := range names {
		if len(name) == 0 {
			continue
		}

		// split off the directory portion of the path
		directory, _ := filepath.Split(name)
		if len(directory) == 0 {
			continue
		}
		if _, err := os.Stat(directory); err != nil {
			errs = append(errs, err)
		}
	}

	if checkExistence {
		for _, name := range names {
			if len(name) == 0 {
				continue
			}
			if _, err := os.Stat(name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) == 0 {
		return true, nil
	}

	return false, ReportErrs(errs)
}
