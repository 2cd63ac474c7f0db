package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a property-resolution test scenario: a schema, a sequence
// of reads and writes against one fresh instance, and assertions on the
// resulting trace and final slots.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE files that together declare exactly one schema.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// InstanceID fixes the instance ID for deterministic traces.
	// If empty, defaults to "test-instance-default".
	InstanceID string `yaml:"instance_id,omitempty"`

	// Tolerance is the numeric tolerance for value expectations.
	// If zero, DefaultTolerance is used.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Steps run in order against a single instance.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and slots.
	// Supported types: trace_contains, trace_count, explicit, cleared, final_value
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DefaultTolerance is used when a scenario does not set one.
const DefaultTolerance = 1e-12

// Step operations.
const (
	OpSet    = "set"    // write slot; value null writes absent
	OpDelete = "delete" // reset slot without cascading
	OpGet    = "get"    // resolve slot
	OpRaw    = "raw"    // read the stored slot without resolution
	OpDeriv  = "deriv"  // read a derivative
)

// Step is a single operation against the instance.
type Step struct {
	// Op is one of set, delete, get, raw or deriv.
	Op string `yaml:"op"`

	// Slot names the slot. "model" addresses the model.
	Slot string `yaml:"slot"`

	// Value is written by set steps. Numbers and lists of numbers become
	// quantities; strings written to a mapping are parsed as transformation
	// expressions; null writes absent.
	Value any `yaml:"value,omitempty"`

	// Expect checks the step outcome. If nil, the step must not fail.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
// At most one of Value, Absent, Error, Zero and Diagonal may be set.
type Expect struct {
	// Value is the expected resolved value: a number, a list of numbers, or
	// a string compared against the rendered value (for mappings).
	Value any `yaml:"value,omitempty"`

	// Absent expects the read to produce no value.
	Absent bool `yaml:"absent,omitempty"`

	// Error is the expected error code, e.g. MISSING_MODEL or TYPE_VALIDATION.
	Error string `yaml:"error,omitempty"`

	// Zero expects a derivative read to be the zero Jacobian.
	Zero bool `yaml:"zero,omitempty"`

	// Diagonal expects a derivative read to be this diagonal Jacobian.
	Diagonal []float64 `yaml:"diagonal,omitempty"`
}

// Assertion validates the final trace or slots.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a step with Op (and Slot, if set) was executed
	// - "trace_count": steps with Op (and Slot, if set) ran exactly Count times
	// - "explicit": every slot in Slots holds an explicit present value
	// - "cleared": every slot in Slots reads absent from the store
	// - "final_value": the final rendering of Slot equals Expect
	Type string `yaml:"type"`

	// Op is the step operation (used by trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Slot is the slot name (used by trace_contains, trace_count, final_value).
	Slot string `yaml:"slot,omitempty"`

	// Slots lists slot names (used by explicit, cleared).
	Slots []string `yaml:"slots,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect is the expected rendering (used by final_value).
	Expect string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertExplicit      = "explicit"
	AssertCleared       = "cleared"
	AssertFinalValue    = "final_value"
)

// LoadScenario reads and parses a scenario YAML file.
// Spec paths are resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating spec paths.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpSet, OpDelete, OpGet, OpRaw, OpDeriv:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Slot == "" {
		return fmt.Errorf("steps[%d]: slot is required", index)
	}

	if step.Op != OpSet && step.Value != nil {
		return fmt.Errorf("steps[%d]: value is only allowed on set steps", index)
	}

	if step.Expect == nil {
		return nil
	}
	set := 0
	if step.Expect.Value != nil {
		set++
	}
	if step.Expect.Absent {
		set++
	}
	if step.Expect.Error != "" {
		set++
	}
	if step.Expect.Zero {
		set++
	}
	if step.Expect.Diagonal != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d].expect: exactly one of value, absent, error, zero, diagonal is required", index)
	}
	if (step.Op == OpSet || step.Op == OpDelete) && step.Expect.Error == "" {
		return fmt.Errorf("steps[%d].expect: %s steps can only expect an error", index, step.Op)
	}
	if (step.Expect.Zero || step.Expect.Diagonal != nil) && step.Op != OpDeriv {
		return fmt.Errorf("steps[%d].expect: zero and diagonal apply to deriv steps", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	case AssertExplicit, AssertCleared:
		if len(a.Slots) == 0 {
			return fmt.Errorf("assertions[%d]: slots is required for %s", index, a.Type)
		}
	case AssertFinalValue:
		if a.Slot == "" {
			return fmt.Errorf("assertions[%d]: slot is required for final_value", index)
		}
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for final_value", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
