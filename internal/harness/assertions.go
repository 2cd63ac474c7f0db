package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/physprop/internal/props"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s", event.Seq, event.Op, event.Slot)
		switch {
		case event.Error != "":
			fmt.Fprintf(&buf, " !%s", event.Error)
		case event.Input != "":
			fmt.Fprintf(&buf, " = %s", event.Input)
		case event.Result != "":
			fmt.Fprintf(&buf, " -> %s", event.Result)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

func matchesStep(event TraceEvent, op, slot string) bool {
	return event.Op == op && (slot == "" || event.Slot == slot)
}

func describeStep(op, slot string) string {
	if slot == "" {
		return op
	}
	return op + " " + slot
}

// assertTraceContains checks that a step with the given op (and slot, if
// set) was executed.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if matchesStep(event, a.Op, a.Slot) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeStep(a.Op, a.Slot),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceCount checks the exact number of matching steps.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if matchesStep(event, a.Op, a.Slot) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s exactly %d times", describeStep(a.Op, a.Slot), a.Count),
		Actual:   fmt.Sprintf("%d times", count),
		Trace:    trace,
	}
}

// assertExplicit checks that each slot holds an explicit present value.
func assertExplicit(inst *props.Instance, trace []TraceEvent, a Assertion) error {
	var missing []string
	for _, name := range a.Slots {
		if inst.Raw(name).IsAbsent() {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertExplicit,
		Expected: fmt.Sprintf("explicit values in %s", strings.Join(a.Slots, ", ")),
		Actual:   fmt.Sprintf("absent: %s", strings.Join(missing, ", ")),
		Trace:    trace,
	}
}

// assertCleared checks that each slot reads absent from the store.
func assertCleared(inst *props.Instance, trace []TraceEvent, a Assertion) error {
	var present []string
	for _, name := range a.Slots {
		if v, ok := inst.Raw(name).Value(); ok {
			present = append(present, fmt.Sprintf("%s=%s", name, props.Describe(v)))
		}
	}
	if len(present) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertCleared,
		Expected: fmt.Sprintf("absent %s", strings.Join(a.Slots, ", ")),
		Actual:   strings.Join(present, ", "),
		Trace:    trace,
	}
}

// assertFinalValue compares the final rendering of an explicitly assigned
// slot.
func assertFinalValue(result *Result, a Assertion) error {
	actual, ok := result.State[a.Slot]
	if !ok {
		actual = "never assigned"
	}
	if ok && actual == a.Expect {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalValue,
		Expected: fmt.Sprintf("%s = %s", a.Slot, a.Expect),
		Actual:   actual,
		Trace:    result.Trace,
	}
}

// EvaluateAssertions checks every assertion against the result and the
// instance it ran on, returning one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, inst *props.Instance) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertExplicit:
			err = assertExplicit(inst, result.Trace, a)
		case AssertCleared:
			err = assertCleared(inst, result.Trace, a)
		case AssertFinalValue:
			err = assertFinalValue(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
