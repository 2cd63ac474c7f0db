package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/davecgh/go-spew/spew"

	"github.com/roach88/physprop/internal/compiler"
	"github.com/roach88/physprop/internal/ir"
	"github.com/roach88/physprop/internal/logging"
	"github.com/roach88/physprop/internal/maps"
	"github.com/roach88/physprop/internal/props"
	"github.com/roach88/physprop/internal/quantity"
	"github.com/roach88/physprop/internal/store"
	"github.com/roach88/physprop/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs steps against one instance with a fixed instance ID and a step
// counter, so the same scenario always yields the same trace.
type Harness struct {
	schema  *props.Schema
	inst    *props.Instance
	store   *store.MemoryStore
	counter *testutil.StepCounter
	tol     float64
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes instance logs (invalidations, resolution paths) to l.
// Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store.
//
// Execution flow:
// 1. Load and compile the CUE specs into a schema
// 2. Create an instance with the scenario's fixed ID
// 3. Execute steps, checking each expectation
// 4. Evaluate assertions against the trace and final slots
//
// The returned error reports problems loading the scenario's schema;
// expectation and assertion failures are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	spec, err := LoadSchema(scenario.Specs...)
	if err != nil {
		return nil, err
	}
	schema, err := props.FromSpec(*spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	ms := store.NewMemoryStore()
	inst := schema.NewInstance(
		props.WithStore(ms),
		props.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.InstanceID)),
		props.WithLogger(cfg.logger),
	)

	tol := scenario.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}

	h := &Harness{
		schema:  schema,
		inst:    inst,
		store:   ms,
		counter: testutil.NewStepCounter(),
		tol:     tol,
		logger:  cfg.logger.With("scenario", scenario.Name),
	}

	result := NewResult()
	result.InstanceID = inst.ID()
	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	h.captureState(result)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, inst) {
		result.AddError(errMsg)
	}

	if !result.Pass {
		result.Dump = spew.Sdump(ms.Snapshot())
		h.logger.Debug("scenario failed", "errors", len(result.Errors))
	}
	return result, nil
}

// LoadSchema compiles CUE files into one validated schema spec. The files
// are unified, so a schema may be split across several of them.
func LoadSchema(paths ...string) (*ir.SchemaSpec, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no spec files given")
	}

	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec: %w", err)
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("failed to compile %s: %w", path, err)
		}
		if i == 0 {
			value = v
			continue
		}
		value = value.Unify(v)
	}

	spec, err := compiler.CompileSchema(value)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	if verrs := compiler.Validate(spec); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("invalid schema: %s", strings.Join(msgs, "; "))
	}
	return spec, nil
}

// executeStep runs one step, records it in the trace and checks its
// expectation.
func (h *Harness) executeStep(index int, step Step, result *Result) {
	ev := TraceEvent{
		Seq:  h.counter.Next(),
		Op:   step.Op,
		Slot: step.Slot,
	}

	var (
		got any
		err error
	)
	switch step.Op {
	case OpSet:
		ev.Input = renderInput(step.Value)
		err = h.schema.Set(h.inst, step.Slot, step.Value)
	case OpDelete:
		err = h.schema.Delete(h.inst, step.Slot)
	case OpGet:
		got, err = h.schema.Get(h.inst, step.Slot)
	case OpRaw:
		kind, ok := h.schema.Kind(step.Slot)
		switch {
		case !ok:
			err = fmt.Errorf("raw %q: %w", step.Slot, props.ErrUnknownSlot)
		case kind == props.KindModel:
			if m, ok := h.inst.Model(); ok {
				got = m
			}
		default:
			got, _ = h.inst.Raw(step.Slot).Value()
		}
	case OpDeriv:
		var j maps.Jacobian
		j, err = h.schema.Deriv(h.inst, step.Slot)
		if err == nil {
			got = j
		}
	}

	if err != nil {
		ev.Error = ErrorCode(err)
	} else if step.Op != OpSet && step.Op != OpDelete {
		ev.Result = props.Describe(got)
	}
	result.addTrace(ev)
	h.logger.Debug("step", "seq", ev.Seq, "op", ev.Op, "slot", ev.Slot, "result", ev.Result, "error", ev.Error)

	where := fmt.Sprintf("steps[%d] %s %s", index, step.Op, step.Slot)
	if msg := h.check(step.Expect, got, err); msg != "" {
		result.AddError(where + ": " + msg)
	}
}

// check compares a step outcome against its expectation and returns a
// failure message, or "" when the expectation holds.
func (h *Harness) check(exp *Expect, got any, err error) string {
	if exp == nil {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		return ""
	}

	if exp.Error != "" {
		if err == nil {
			return fmt.Sprintf("expected error %s, got %s", exp.Error, props.Describe(got))
		}
		if code := ErrorCode(err); code != exp.Error {
			return fmt.Sprintf("expected error %s, got %s: %v", exp.Error, code, err)
		}
		return ""
	}
	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}

	switch {
	case exp.Absent:
		if got != nil {
			return fmt.Sprintf("expected absent, got %s", props.Describe(got))
		}
	case exp.Zero:
		j, ok := got.(maps.Jacobian)
		if !ok || !maps.IsZero(j) {
			return fmt.Sprintf("expected Zero, got %s", props.Describe(got))
		}
	case exp.Diagonal != nil:
		d, ok := got.(maps.Diagonal)
		want := quantity.Array(exp.Diagonal)
		if !ok || !quantity.Equal(quantity.Array(d), want, h.tol) {
			return fmt.Sprintf("expected diag%s, got %s", quantity.Format(want), props.Describe(got))
		}
	default:
		return h.checkValue(exp.Value, got)
	}
	return ""
}

func (h *Harness) checkValue(want, got any) string {
	if got == nil {
		return fmt.Sprintf("expected %v, got <absent>", want)
	}
	if s, ok := want.(string); ok {
		if actual := props.Describe(got); actual != s {
			return fmt.Sprintf("expected %s, got %s", s, actual)
		}
		return ""
	}

	wantQ, err := quantity.FromAny(want)
	if err != nil {
		return fmt.Sprintf("expected value is not numeric: %v", err)
	}
	gotQ, ok := got.(quantity.Value)
	if !ok || !quantity.Equal(gotQ, wantQ, h.tol) {
		return fmt.Sprintf("expected %s, got %s", quantity.Format(wantQ), props.Describe(got))
	}
	return ""
}

// captureState renders every explicitly assigned slot and the model.
func (h *Harness) captureState(result *Result) {
	for _, name := range h.store.Names() {
		v, _ := h.store.Get(name).Value()
		result.State[name] = props.Describe(v)
	}
	if m, ok := h.inst.Model(); ok {
		result.State[props.ModelSlot] = quantity.Format(m)
	}
}

// renderInput renders a set step's value for the trace.
func renderInput(v any) string {
	switch val := v.(type) {
	case nil:
		return props.Describe(nil)
	case string:
		return val
	}
	if q, err := quantity.FromAny(v); err == nil {
		return quantity.Format(q)
	}
	return fmt.Sprintf("%v", v)
}

// ErrorCode maps an error to the code used in traces and expectations.
func ErrorCode(err error) string {
	var re *props.ResolutionError
	switch {
	case errors.As(err, &re):
		return string(re.Code)
	case props.IsTypeValidation(err):
		return "TYPE_VALIDATION"
	case errors.Is(err, props.ErrUnknownSlot):
		return "UNKNOWN_SLOT"
	case errors.Is(err, props.ErrReadOnly):
		return "READ_ONLY"
	case errors.Is(err, props.ErrForeignDescriptor):
		return "FOREIGN_DESCRIPTOR"
	default:
		return "ERROR"
	}
}
