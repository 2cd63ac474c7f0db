package compiler

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/roach88/physprop/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// QuantitySpec errors (E101-E109)
	ErrDescriptionEmpty      = "E101" // description is required
	ErrUnknownReciprocal     = "E102" // reciprocal names no quantity
	ErrSelfReciprocal        = "E103" // quantity is its own reciprocal
	ErrConflictingReciprocal = "E104" // quantity linked to two partners
	ErrDuplicateName         = "E105" // duplicate slot name, including derived names
	ErrInvalidName           = "E106" // name is not an identifier
	ErrNonFiniteDefault      = "E107" // default is NaN or Inf

	// SchemaSpec errors (E110-E119)
	ErrSchemaNameEmpty = "E110" // schema name is required
	ErrNoQuantities    = "E111" // at least one quantity required
)

// Suffixes of the slots derived from an invertible quantity.
const (
	mappingSuffix    = "Map"
	derivativeSuffix = "Deriv"
	modelSlot        = "model"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.SchemaSpec:
		return validateSchemaSpec(spec)
	case ir.SchemaSpec:
		return validateSchemaSpec(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateSchemaSpec checks names, links and defaults of a compiled schema.
func validateSchemaSpec(spec *ir.SchemaSpec) []ValidationError {
	var errs []ValidationError

	// E110: schema name is required
	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "schema",
			Message: "schema name is required and must be non-empty",
			Code:    ErrSchemaNameEmpty,
		})
	}

	// E111: at least one quantity required
	if len(spec.Quantities) == 0 {
		errs = append(errs, ValidationError{
			Field:   "quantities",
			Message: "at least one quantity is required",
			Code:    ErrNoQuantities,
		})
	}

	// Track every slot name, including derived ones, for duplicate detection.
	// "model" is reserved for the instance model.
	slots := map[string]string{modelSlot: "the instance model"}
	claim := func(i int, slot, owner string) {
		if prev, ok := slots[slot]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].name", i),
				Message: fmt.Sprintf("slot %q of %s collides with %s", slot, owner, prev),
				Code:    ErrDuplicateName,
			})
			return
		}
		slots[slot] = owner
	}

	for i, q := range spec.Quantities {
		owner := fmt.Sprintf("quantity %q", q.Name)

		// E106: name must be an identifier
		if !isValidName(q.Name) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].name", i),
				Message: fmt.Sprintf("invalid quantity name: %q", q.Name),
				Code:    ErrInvalidName,
			})
		}

		// E105: duplicate slot name
		claim(i, q.Name, owner)
		if q.Invertible {
			claim(i, q.Name+mappingSuffix, owner)
			claim(i, q.Name+derivativeSuffix, owner)
		}

		// E101: description is required
		if strings.TrimSpace(q.Description) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].description", i),
				Message: fmt.Sprintf("quantity %q must have a description", q.Name),
				Code:    ErrDescriptionEmpty,
			})
		}

		// E107: default must be finite
		if q.Default != nil && (math.IsNaN(*q.Default) || math.IsInf(*q.Default, 0)) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].default", i),
				Message: fmt.Sprintf("default of %q must be finite, got %v", q.Name, *q.Default),
				Code:    ErrNonFiniteDefault,
			})
		}
	}

	errs = append(errs, validateReciprocals(spec)...)
	return errs
}

// validateReciprocals checks that reciprocal links name existing quantities
// and form disjoint pairs.
func validateReciprocals(spec *ir.SchemaSpec) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(spec.Quantities))
	for _, q := range spec.Quantities {
		declared[q.Name] = true
	}

	partner := make(map[string]string)
	link := func(i int, a, b string) {
		if prev, ok := partner[a]; ok && prev != b {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].reciprocal", i),
				Message: fmt.Sprintf("%q is already the reciprocal of %q, cannot also pair with %q", a, prev, b),
				Code:    ErrConflictingReciprocal,
			})
			return
		}
		partner[a] = b
	}

	for i, q := range spec.Quantities {
		if q.Reciprocal == "" {
			continue
		}

		// E103: self-reciprocal
		if q.Reciprocal == q.Name {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].reciprocal", i),
				Message: fmt.Sprintf("quantity %q cannot be its own reciprocal", q.Name),
				Code:    ErrSelfReciprocal,
			})
			continue
		}

		// E102: reciprocal must exist
		if !declared[q.Reciprocal] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("quantities[%d].reciprocal", i),
				Message: fmt.Sprintf("quantity %q names unknown reciprocal %q", q.Name, q.Reciprocal),
				Code:    ErrUnknownReciprocal,
			})
			continue
		}

		// E104: each quantity pairs with at most one partner
		before := len(errs)
		link(i, q.Name, q.Reciprocal)
		if len(errs) == before {
			link(i, q.Reciprocal, q.Name)
		}
	}

	return errs
}

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// isValidName checks that a quantity name can be used as a slot name and a
// CUE label without quoting.
func isValidName(name string) bool {
	return namePattern.MatchString(name)
}
