package fabmetrics

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TraceInst is one recorded step of a metrics calculation
type TraceInst struct {
	// name of the step, e.g. "normalize", "spine-breakout", "cost"
	Step string `json:"step" yaml:"step"`

	// yaml serialization of whatever the step produced
	TraceStr string `json:"tracestr" yaml:"tracestr"`
}

// TraceManager gathers, per topology, the intermediate values of metrics calculations
// so that a surprising result can be followed back to the breakout resolution or
// normalization that produced it.  A TraceManager is not safe for concurrent use.
type TraceManager struct {
	// calculations record into the trace only when InUse
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of the run being traced
	ExpName string `json:"expname" yaml:"expname"`

	// topology name for every topology ID traced
	NameByID map[string]string `json:"namebyid" yaml:"namebyid"`

	// trace records for each topology ID, in the order recorded
	Traces map[string][]TraceInst `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  It saves the name of the run
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.NameByID = make(map[string]string)
	tm.Traces = make(map[string][]TraceInst)

	return tm
}

// Active tells the caller whether the TraceManager is actively being used
func (tm *TraceManager) Active() bool {
	return tm != nil && tm.InUse
}

// AddName binds a topology ID to its name in the trace
func (tm *TraceManager) AddName(id, name string) {
	if !tm.Active() {
		return
	}
	tm.NameByID[id] = name
}

// AddTrace serializes record and stores it under the topology ID and step given
func (tm *TraceManager) AddTrace(id, step string, record any) error {
	if !tm.Active() {
		return nil
	}

	bytes, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("trace %s/%s: %w", id, step, err)
	}

	tm.Traces[id] = append(tm.Traces[id], TraceInst{Step: step, TraceStr: string(bytes)})

	return nil
}

// Steps returns the names of the steps recorded for a topology, in order
func (tm *TraceManager) Steps(id string) []string {
	steps := make([]string, 0, len(tm.Traces[id]))
	for _, inst := range tm.Traces[id] {
		steps = append(steps, inst.Step)
	}

	return steps
}

// WriteToFile stores the TraceManager struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
// Nothing is written, and false is returned, when the manager is inactive.
func (tm *TraceManager) WriteToFile(filename string) (bool, error) {
	if !tm.Active() {
		return false, nil
	}
	if err := writeDescToFile(filename, tm); err != nil {
		return false, err
	}

	return true, nil
}
