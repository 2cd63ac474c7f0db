package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	names := []string{
		"reciprocal_through_mapping",
		"explicit_value_clears_mapping",
		"missing_model",
		"nothing_declared_reads_absent",
		"reciprocal_defaults",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v\n%s", result.Errors, result.Dump)
		})
	}
}

func TestTraceSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "reciprocal_through_mapping.yaml"))
	require.NoError(t, err)

	var outputs [][]byte
	for i := 0; i < 3; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		snapshot := NewTraceSnapshot(scenario.Name, result)
		out, err := snapshot.MarshalCanonical()
		require.NoError(t, err)
		outputs = append(outputs, out)
	}

	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestTraceSnapshot_HashIgnoresNameAndState(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Op: OpSet, Slot: "model", Input: "[1]"},
		{Seq: 2, Op: OpGet, Slot: "label", Result: "<absent>"},
	}
	a := TraceSnapshot{ScenarioName: "a", Trace: trace}
	b := TraceSnapshot{ScenarioName: "b", Trace: trace, State: map[string]string{"label": "<absent>"}}

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	c := TraceSnapshot{ScenarioName: "a", Trace: trace[:1]}
	hc, err := c.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestTraceSnapshot_OmitsEmptyFields(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "omit",
		InstanceID:   "i-1",
		Trace:        []TraceEvent{{Seq: 1, Op: OpDelete, Slot: "label"}},
		State:        map[string]string{},
	}

	out, err := snapshot.MarshalCanonical()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"trace":[{"op":"delete","seq":1,"slot":"label"}]`)
	assert.Contains(t, string(out), `"state":{}`)
	assert.NotContains(t, string(out), `"input"`)
	assert.NotContains(t, string(out), `"error"`)
}
