package props

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for descriptor misuse.
var (
	// ErrUnknownSlot is returned by by-name access for a name the schema does
	// not declare.
	ErrUnknownSlot = errors.New("unknown slot")

	// ErrForeignDescriptor is returned when a descriptor is used with an
	// instance of a different schema, or before its builder was built.
	ErrForeignDescriptor = errors.New("descriptor does not belong to the instance's schema")

	// ErrReadOnly is returned when writing to a Derivative by name.
	ErrReadOnly = errors.New("slot is read-only")

	// ErrAlreadyBuilt is returned by a second Builder.Build.
	ErrAlreadyBuilt = errors.New("schema already built")
)

// ResolutionError is returned when a read cannot produce a value.
//
// Resolution errors include:
//   - Unset default: no mapping and no resolvable reciprocal
//   - Unset mapping: a mapping is declared but resolves absent
//   - Missing model: a mapping resolved but the instance has no model
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Quantity is the slot being read.
	Quantity string

	// Message is a human-readable description.
	Message string

	// InstanceID identifies the instance the read was made against.
	InstanceID string
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodeUnsetDefault indicates neither a value, a mapping nor a
	// resolvable reciprocal is available.
	ErrCodeUnsetDefault ResolutionErrorCode = "UNSET_DEFAULT"

	// ErrCodeUnsetMapping indicates the property's mapping resolves absent.
	ErrCodeUnsetMapping ResolutionErrorCode = "UNSET_MAPPING"

	// ErrCodeMissingModel indicates a mapping is available but there is no model.
	ErrCodeMissingModel ResolutionErrorCode = "MISSING_MODEL"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.InstanceID != "" {
		return fmt.Sprintf("%s: %s (instance=%s)", e.Code, e.Message, e.InstanceID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func isResolutionCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnsetDefault returns true if err is an UnsetDefault resolution error.
// Uses errors.As to handle wrapped errors.
func IsUnsetDefault(err error) bool {
	return isResolutionCode(err, ErrCodeUnsetDefault)
}

// IsUnsetMapping returns true if err is an UnsetMapping resolution error.
func IsUnsetMapping(err error) bool {
	return isResolutionCode(err, ErrCodeUnsetMapping)
}

// IsMissingModel returns true if err is a MissingModel resolution error.
func IsMissingModel(err error) bool {
	return isResolutionCode(err, ErrCodeMissingModel)
}

func newUnsetDefaultError(inst *Instance, p *PhysicalProperty) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeUnsetDefault,
		Quantity:   p.name,
		Message:    fmt.Sprintf("a default for %s/%s has not been set", p.name, p.reciprocal.name),
		InstanceID: inst.id,
	}
}

func newUnsetMappingError(inst *Instance, p *PhysicalProperty) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeUnsetMapping,
		Quantity:   p.name,
		Message:    fmt.Sprintf("a default %q or mapping %q has not been set", p.name, p.mapping.name),
		InstanceID: inst.id,
	}
}

func newMissingModelError(inst *Instance, quantity string) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeMissingModel,
		Quantity:   quantity,
		Message:    fmt.Sprintf("a model is required for %s", quantity),
		InstanceID: inst.id,
	}
}

// TypeValidationError is returned when an assigned value does not have the
// capability its slot requires. The instance is left unchanged.
type TypeValidationError struct {
	// Slot is the slot that rejected the value.
	Slot string

	// Expected names the required capability.
	Expected string

	// Value is the rejected value.
	Value any

	// Err is the underlying conversion error, if any.
	Err error
}

// Error implements the error interface.
func (e *TypeValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("TYPE_VALIDATION: %s must be %s, got %T: %v", e.Slot, e.Expected, e.Value, e.Err)
	}
	return fmt.Sprintf("TYPE_VALIDATION: %s must be %s, got %T", e.Slot, e.Expected, e.Value)
}

// Unwrap returns the underlying error.
func (e *TypeValidationError) Unwrap() error {
	return e.Err
}

// IsTypeValidation returns true if err is a TypeValidationError.
func IsTypeValidation(err error) bool {
	var te *TypeValidationError
	return errors.As(err, &te)
}

// BuildError collects every consistency problem found by Builder.Build.
type BuildError struct {
	Schema   string
	Problems []string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("schema %q: %s", e.Schema, strings.Join(e.Problems, "; "))
}
