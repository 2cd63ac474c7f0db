package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/physprop/internal/compiler"
)

// ValidationResult is the data of a validate response.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Schema   string                     `json:"schema,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.LinkWarning     `json:"warnings,omitempty"`
}

func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate a schema declaration",
		Long: `Validate the CUE schema declared in a directory.

Checks syntax, required fields, slot names and reciprocal links, then
reports link warnings: reciprocal pairs with nothing to resolve from and
quantities that can never produce a value. Warnings do not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)
	logger := opts.Logger().With("command", "validate", "dir", specsDir)

	loaded, err := LoadSchema(specsDir)
	var loadErr *LoadError
	switch {
	case loaded == nil && errors.As(err, &loadErr):
		return commandError(f, loadErr.Code, loadErr.Message)
	case loaded == nil:
		return commandError(f, ErrCodeGeneric, err.Error())
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	// The package built but did not compile: report it like any other
	// validation problem, with its source line.
	if errors.As(err, &loadErr) {
		verr := compiler.ValidationError{Field: "load", Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			verr.Line = loadErr.Pos.Line()
		}
		return reportInvalid(f, []compiler.ValidationError{verr})
	}

	spec := loaded.Spec
	f.VerboseLog("Validating schema: %s (%d quantities)", spec.Name, len(spec.Quantities))
	if verrs := compiler.Validate(spec); len(verrs) > 0 {
		logger.Debug("validation failed", "errors", len(verrs))
		return reportInvalid(f, verrs)
	}

	result := ValidationResult{Valid: true, Schema: spec.Name, Warnings: compiler.AnalyzeLinks(spec)}
	for _, w := range result.Warnings {
		logger.Info("link warning", "path", w.Path, "level", w.Level, "message", w.Message)
	}
	if f.json() {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "✓ Schema %s valid\n", result.Schema)
	if len(result.Warnings) > 0 {
		fmt.Fprintln(f.Writer)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(f.Writer, "  %s %s: %s\n", w.Level, strings.Join(w.Path, " → "), w.Message)
	}
	return nil
}

// reportInvalid prints every problem and fails with ExitFailure. The JSON
// envelope carries the first problem as its error.
func reportInvalid(f *OutputFormatter, errs []compiler.ValidationError) error {
	failed := failuref("validation failed with %d error(s)", len(errs))

	if f.json() {
		err := f.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		})
		if err != nil {
			return err
		}
		return failed
	}

	fmt.Fprint(f.Writer, "✗ Validation failed\n\n")
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return failed
}

// ValidateSpecsDir loads the schema in specsDir and returns its validation
// problems. A schema that fails to load is an error, not a problem list.
func ValidateSpecsDir(specsDir string) ([]compiler.ValidationError, error) {
	loaded, err := LoadSchema(specsDir)
	if err != nil {
		return nil, err
	}
	return compiler.Validate(loaded.Spec), nil
}
