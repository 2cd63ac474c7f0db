package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/physprop/internal/compiler"
	"github.com/roach88/physprop/internal/ir"
	"github.com/roach88/physprop/internal/props"
)

// DescribeResult is the resolved view of a schema.
type DescribeResult struct {
	Schema    string         `json:"schema"`
	Hash      string         `json:"hash"`
	IRVersion string         `json:"ir_version"`
	Slots     []SlotInfo     `json:"slots"`
	Warnings  []string       `json:"warnings,omitempty"`
	Summary   DescribeCounts `json:"summary"`
}

// DescribeCounts holds summary statistics.
type DescribeCounts struct {
	Properties  int `json:"properties"`
	Mappings    int `json:"mappings"`
	Derivatives int `json:"derivatives"`
}

// SlotInfo describes one named slot and what a write to it touches.
type SlotInfo struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Reciprocal  string   `json:"reciprocal,omitempty"`
	Mapping     string   `json:"mapping,omitempty"`
	Default     string   `json:"default,omitempty"`
	Derivation  string   `json:"derivation,omitempty"`
	Supersedes  []string `json:"supersedes,omitempty"`
	Invalidates []string `json:"invalidates,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <specs-dir>",
		Short: "Show the slots and invalidation graph of a schema",
		Long: `Compile a schema and show every slot it declares.

For each property: its reciprocal, mapping, default and how it derives from
the model. For each property and mapping: which slots a write supersedes or
invalidates. The content hash identifies the schema across runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, err := loadValidSchema(specsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	result, err := describeSchema(spec)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	opts.Logger().Debug("described schema", "schema", result.Schema, "hash", result.Hash, "slots", len(result.Slots))

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputDescribeText(formatter, result)
	return nil
}

// describeSchema builds the schema and reads back its slot graph.
func describeSchema(spec *ir.SchemaSpec) (*DescribeResult, error) {
	schema, err := props.FromSpec(*spec)
	if err != nil {
		return nil, err
	}
	hash, err := ir.SchemaHash(*spec)
	if err != nil {
		return nil, err
	}

	result := &DescribeResult{
		Schema:    schema.Name(),
		Hash:      hash,
		IRVersion: ir.IRVersion,
		Summary: DescribeCounts{
			Properties:  len(schema.Properties()),
			Mappings:    len(schema.Mappings()),
			Derivatives: len(schema.Derivatives()),
		},
	}

	for _, p := range schema.Properties() {
		deps := schema.Dependents(p.Name())
		info := SlotInfo{
			Name:        p.Name(),
			Kind:        string(props.KindProperty),
			Description: p.Description(),
			Derivation:  compiler.DescribeDerivation(spec, p.Name()),
			Supersedes:  deps.Supersedes,
			Invalidates: deps.Invalidates,
		}
		if r := p.Reciprocal(); r != nil {
			info.Reciprocal = r.Name()
		}
		if m := p.Mapping(); m != nil {
			info.Mapping = m.Name()
		}
		if def, ok := p.Default(); ok {
			info.Default = props.Describe(def)
		}
		result.Slots = append(result.Slots, info)
	}

	for _, m := range schema.Mappings() {
		deps := schema.Dependents(m.Name())
		result.Slots = append(result.Slots, SlotInfo{
			Name:        m.Name(),
			Kind:        string(props.KindMapping),
			Description: m.Description(),
			Invalidates: deps.Invalidates,
		})
	}

	for _, d := range schema.Derivatives() {
		result.Slots = append(result.Slots, SlotInfo{
			Name:        d.Name(),
			Kind:        string(props.KindDerivative),
			Description: d.Description(),
		})
	}

	for _, w := range compiler.AnalyzeLinks(spec) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", w.Level, w.Message))
	}

	return result, nil
}

func outputDescribeText(f *OutputFormatter, r *DescribeResult) {
	w := f.Writer
	fmt.Fprintf(w, "Schema %s (ir v%s)\n", r.Schema, r.IRVersion)
	fmt.Fprintf(w, "  hash: %s\n", r.Hash)
	fmt.Fprintf(w, "  %d properties, %d mappings, %d derivatives\n\n",
		r.Summary.Properties, r.Summary.Mappings, r.Summary.Derivatives)

	for _, s := range r.Slots {
		fmt.Fprintf(w, "%s [%s]\n", s.Name, s.Kind)
		fmt.Fprintf(w, "  %s\n", s.Description)
		if s.Reciprocal != "" {
			fmt.Fprintf(w, "  reciprocal: %s\n", s.Reciprocal)
		}
		if s.Mapping != "" {
			fmt.Fprintf(w, "  mapping: %s\n", s.Mapping)
		}
		if s.Default != "" {
			fmt.Fprintf(w, "  default: %s\n", s.Default)
		}
		if s.Derivation != "" {
			fmt.Fprintf(w, "  derivation: %s\n", s.Derivation)
		}
		if len(s.Supersedes) > 0 {
			fmt.Fprintf(w, "  supersedes: %s\n", strings.Join(s.Supersedes, ", "))
		}
		if len(s.Invalidates) > 0 {
			fmt.Fprintf(w, "  invalidates: %s\n", strings.Join(s.Invalidates, ", "))
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "%s\n", warning)
		}
	}
}
