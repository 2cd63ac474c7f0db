package quantity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when a value is neither a numeric scalar nor a
// homogeneous numeric array.
var ErrNotNumeric = errors.New("value is not a numeric scalar or array")

// Value is a sealed interface representing a numeric quantity value.
// Only Scalar and Array implement this.
type Value interface {
	quantityValue() // Sealed - only these types implement it

	// Len returns the number of elements (1 for a Scalar).
	Len() int
}

// Scalar is a single float64 quantity, e.g. a uniform conductivity.
type Scalar float64

func (Scalar) quantityValue() {}

// Len implements Value.
func (Scalar) Len() int { return 1 }

// Array is a cell-wise quantity or a model vector.
type Array []float64

func (Array) quantityValue() {}

// Len implements Value.
func (a Array) Len() int { return len(a) }

// Clone returns a copy that shares no storage with a.
func (a Array) Clone() Array {
	if a == nil {
		return nil
	}
	out := make(Array, len(a))
	copy(out, a)
	return out
}

// Copy returns v with any Array cloned. Scalars are returned as is.
func Copy(v Value) Value {
	if a, ok := v.(Array); ok {
		return a.Clone()
	}
	return v
}

// NewArray creates an Array from values.
func NewArray(vals ...float64) Array {
	return Array(vals)
}

// Reciprocal returns the element-wise multiplicative inverse of v.
// Division by zero follows IEEE 754 and yields ±Inf.
func Reciprocal(v Value) Value {
	switch val := v.(type) {
	case Scalar:
		return Scalar(1.0 / float64(val))
	case Array:
		out := make(Array, len(val))
		for i, x := range val {
			out[i] = 1.0 / x
		}
		return out
	default:
		panic(fmt.Sprintf("quantity: unknown Value type %T", v))
	}
}

// FromAny converts a Go value into a Value.
//
// Accepted inputs: Scalar, Array, float64, float32, int, int64, []float64,
// []int and []any whose elements are all numeric. Anything else (strings,
// bools, mixed slices, nil) returns an error wrapping ErrNotNumeric.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Scalar:
		return val, nil
	case Array:
		return val, nil
	case float64:
		return Scalar(val), nil
	case float32:
		return Scalar(val), nil
	case int:
		return Scalar(val), nil
	case int64:
		return Scalar(val), nil
	case []float64:
		return Array(val), nil
	case []int:
		out := make(Array, len(val))
		for i, x := range val {
			out[i] = float64(x)
		}
		return out, nil
	case []any:
		out := make(Array, len(val))
		for i, elem := range val {
			f, ok := toFloat(elem)
			if !ok {
				return nil, fmt.Errorf("array[%d] has type %T: %w", i, elem, ErrNotNumeric)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("type %T: %w", v, ErrNotNumeric)
	}
}

// AsArray converts v to an Array, promoting a Scalar to a one-element Array.
// Models are always arrays.
func AsArray(v any) (Array, error) {
	q, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	switch val := q.(type) {
	case Array:
		return val, nil
	case Scalar:
		return Array{float64(val)}, nil
	}
	return nil, fmt.Errorf("type %T: %w", v, ErrNotNumeric)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case Scalar:
		return float64(n), true
	default:
		return 0, false
	}
}

// Equal reports whether a and b have the same shape and every pair of
// elements differs by at most tol (relative for large magnitudes).
// A Scalar never equals an Array, even of length one.
func Equal(a, b Value, tol float64) bool {
	switch av := a.(type) {
	case Scalar:
		bv, ok := b.(Scalar)
		return ok && within(float64(av), float64(bv), tol)
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !within(av[i], bv[i], tol) {
				return false
			}
		}
		return true
	}
	return false
}

func within(a, b, tol float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return diff <= tol*scale
}

// Format renders v compactly: "0.25" for a Scalar, "[1, 0.5]" for an Array.
func Format(v Value) string {
	switch val := v.(type) {
	case Scalar:
		return formatFloat(float64(val))
	case Array:
		parts := make([]string, len(val))
		for i, x := range val {
			parts[i] = formatFloat(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case nil:
		return "<absent>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Floats returns the elements of v as a slice. A Scalar yields one element.
func Floats(v Value) []float64 {
	switch val := v.(type) {
	case Scalar:
		return []float64{float64(val)}
	case Array:
		return []float64(val)
	}
	return nil
}
