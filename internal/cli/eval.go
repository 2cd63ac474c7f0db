package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/physprop/internal/harness"
	"github.com/roach88/physprop/internal/props"
)

// EvalOptions holds the flags of the eval command.
type EvalOptions struct {
	Model string
	Maps  []string
	Sets  []string
}

// EvalResult holds the slots read by one evaluation.
type EvalResult struct {
	Schema     string      `json:"schema"`
	InstanceID string      `json:"instance_id"`
	Values     []SlotValue `json:"values"`
}

// SlotValue is one read slot. Exactly one of Value and Error is set.
type SlotValue struct {
	Slot  string `json:"slot"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
	Cause string `json:"cause,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <specs-dir> [slot...]",
		Short: "Evaluate slots on a fresh instance",
		Long: `Create an instance of the schema, apply writes, then read slots.

Writes are applied in order: the model first, then every --map, then every
--set. A --set with an empty value writes absent. With no slot arguments
every property is read.

Examples:
  physprop eval ./specs --model 1,2 --map conductivityMap=identity resistivity
  physprop eval ./specs --set conductivity=0.5 resistivity
  physprop eval ./specs --model 2,4 resistivityDeriv`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Model, "model", "", "model vector (comma-separated numbers)")
	cmd.Flags().StringArrayVar(&opts.Maps, "map", nil, "assign a mapping as name=expr (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "assign a property as name=v[,v...] (repeatable)")

	return cmd
}

func runEval(rootOpts *RootOptions, opts *EvalOptions, specsDir string, slots []string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	spec, err := loadValidSchema(specsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	schema, err := props.FromSpec(*spec)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	writes, err := evalWrites(opts)
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}

	inst := schema.NewInstance(
		props.WithIDGenerator(props.UUIDv7Generator{}),
		props.WithLogger(rootOpts.Logger()),
	)
	logger := rootOpts.Logger().With("command", "eval", "instance", inst.ID())

	for _, w := range writes {
		logger.Debug("write", "slot", w.slot, "value", w.raw)
		if err := schema.Set(inst, w.slot, w.value); err != nil {
			return commandError(formatter, harness.ErrorCode(err), err.Error())
		}
	}

	if len(slots) == 0 {
		for _, p := range schema.Properties() {
			slots = append(slots, p.Name())
		}
	}

	result := EvalResult{Schema: schema.Name(), InstanceID: inst.ID()}
	failed := 0
	for _, slot := range slots {
		v, err := schema.Get(inst, slot)
		if err != nil {
			failed++
			result.Values = append(result.Values, SlotValue{Slot: slot, Error: harness.ErrorCode(err), Cause: err.Error()})
			continue
		}
		result.Values = append(result.Values, SlotValue{Slot: slot, Value: props.Describe(v)})
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, InstanceID: inst.ID()}
		if failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "READ_FAILED", Message: fmt.Sprintf("%d slot(s) could not be read", failed)}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		outputEvalText(formatter, result)
	}

	if failed > 0 {
		return failuref("%d slot(s) could not be read", failed)
	}
	return nil
}

type evalWrite struct {
	slot  string
	raw   string
	value any
}

// evalWrites turns the write flags into slot writes in application order.
func evalWrites(opts *EvalOptions) ([]evalWrite, error) {
	var writes []evalWrite

	if opts.Model != "" {
		nums, err := parseNumbers(opts.Model)
		if err != nil {
			return nil, fmt.Errorf("--model: %w", err)
		}
		writes = append(writes, evalWrite{slot: props.ModelSlot, raw: opts.Model, value: nums})
	}

	for _, m := range opts.Maps {
		name, expr, err := splitAssignment("--map", m)
		if err != nil {
			return nil, err
		}
		if expr == "" {
			writes = append(writes, evalWrite{slot: name, raw: expr})
			continue
		}
		writes = append(writes, evalWrite{slot: name, raw: expr, value: expr})
	}

	for _, s := range opts.Sets {
		name, raw, err := splitAssignment("--set", s)
		if err != nil {
			return nil, err
		}
		w := evalWrite{slot: name, raw: raw}
		if raw != "" {
			nums, err := parseNumbers(raw)
			if err != nil {
				return nil, fmt.Errorf("--set %s: %w", name, err)
			}
			if len(nums) == 1 && !strings.Contains(raw, ",") {
				w.value = nums[0]
			} else {
				w.value = nums
			}
		}
		writes = append(writes, w)
	}

	return writes, nil
}

func splitAssignment(flag, s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%s %q: expected name=value", flag, s)
	}
	return name, strings.TrimSpace(value), nil
}

// parseNumbers parses a comma-separated list of floats.
func parseNumbers(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", strings.TrimSpace(p))
		}
		out = append(out, f)
	}
	return out, nil
}

func outputEvalText(f *OutputFormatter, r EvalResult) {
	fmt.Fprintf(f.Writer, "instance %s (schema %s)\n", r.InstanceID, r.Schema)
	for _, v := range r.Values {
		if v.Error != "" {
			fmt.Fprintf(f.Writer, "  %s: error %s\n", v.Slot, v.Error)
			if f.Verbose {
				fmt.Fprintf(f.Writer, "    %s\n", v.Cause)
			}
			continue
		}
		fmt.Fprintf(f.Writer, "  %s = %s\n", v.Slot, v.Value)
	}
}
