package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/physprop/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string            `json:"scenario_name"`
	InstanceID   string            `json:"instance_id"`
	Trace        []TraceEvent      `json:"trace"`
	State        map[string]string `json:"state"`
}

// NewTraceSnapshot builds the snapshot of a finished run.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		InstanceID:   result.InstanceID,
		Trace:        result.Trace,
		State:        result.State,
	}
}

// traceList converts trace events to the []any that ir.MarshalCanonical
// accepts. Empty fields are omitted.
func traceList(trace []TraceEvent) []any {
	list := make([]any, len(trace))
	for i, event := range trace {
		eventMap := map[string]any{
			"seq": event.Seq,
			"op":  event.Op,
		}
		if event.Slot != "" {
			eventMap["slot"] = event.Slot
		}
		if event.Input != "" {
			eventMap["input"] = event.Input
		}
		if event.Result != "" {
			eventMap["result"] = event.Result
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
		}
		list[i] = eventMap
	}
	return list
}

// Hash returns the content hash of the trace alone, independent of the
// scenario name and final state.
func (s *TraceSnapshot) Hash() (string, error) {
	return ir.TraceHash(traceList(s.Trace))
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() (map[string]any, error) {
	hash, err := s.Hash()
	if err != nil {
		return nil, err
	}
	state := make(map[string]any, len(s.State))
	for k, v := range s.State {
		state[k] = v
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"instance_id":   s.InstanceID,
		"trace":         traceList(s.Trace),
		"trace_hash":    hash,
		"state":         state,
	}, nil
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	m, err := s.toCanonicalMap()
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(m)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
