package maps

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/physprop/internal/quantity"
)

// Transformation maps a model vector to a quantity value.
//
// Implementations are stateless and are shared by reference; a Mapping slot
// holds one by identity.
type Transformation interface {
	// Apply evaluates the transformation at model m.
	Apply(m quantity.Array) (quantity.Value, error)

	// Deriv returns the Jacobian of Apply with respect to m, evaluated at m.
	Deriv(m quantity.Array) (Jacobian, error)

	// String returns an expression that Parse accepts.
	String() string
}

// elementwise applies f to every model cell independently; its Jacobian is
// Diagonal(df(m)).
type elementwise struct {
	name string
	f    func(float64) float64
	df   func(float64) float64
}

func (e *elementwise) Apply(m quantity.Array) (quantity.Value, error) {
	out := make(quantity.Array, len(m))
	for i, x := range m {
		out[i] = e.f(x)
	}
	return out, nil
}

func (e *elementwise) Deriv(m quantity.Array) (Jacobian, error) {
	out := make(Diagonal, len(m))
	for i, x := range m {
		out[i] = e.df(x)
	}
	return out, nil
}

func (e *elementwise) String() string { return e.name }

var (
	identity = &elementwise{
		name: "identity",
		f:    func(x float64) float64 { return x },
		df:   func(float64) float64 { return 1 },
	}
	exp = &elementwise{
		name: "exp",
		f:    math.Exp,
		df:   math.Exp,
	}
	logarithm = &elementwise{
		name: "log",
		f:    math.Log,
		df:   func(x float64) float64 { return 1 / x },
	}
	reciprocal = &elementwise{
		name: "reciprocal",
		f:    func(x float64) float64 { return 1 / x },
		df:   func(x float64) float64 { return -1 / (x * x) },
	}
)

// Identity returns m unchanged.
func Identity() Transformation { return identity }

// Exp returns exp(m), the usual log-conductivity parameterization.
func Exp() Transformation { return exp }

// Log returns ln(m).
func Log() Transformation { return logarithm }

// Reciprocal returns 1/m element-wise.
func Reciprocal() Transformation { return reciprocal }

// Scale returns factor*m.
func Scale(factor float64) Transformation {
	return &elementwise{
		name: "scale(" + strconv.FormatFloat(factor, 'g', -1, 64) + ")",
		f:    func(x float64) float64 { return factor * x },
		df:   func(float64) float64 { return factor },
	}
}

// composed is outer ∘ inner.
type composed struct {
	outer Transformation
	inner Transformation
}

// Compose returns outer ∘ inner, written "outer * inner": the inner
// transformation is applied to the model first.
func Compose(outer, inner Transformation) Transformation {
	return &composed{outer: outer, inner: inner}
}

// ReciprocalOf wraps t so that the result is 1/t(m). The inversion is
// deferred to Apply; no numbers are computed here.
func ReciprocalOf(t Transformation) Transformation {
	return Compose(Reciprocal(), t)
}

func (c *composed) Apply(m quantity.Array) (quantity.Value, error) {
	mid, err := c.applyInner(m)
	if err != nil {
		return nil, err
	}
	return c.outer.Apply(mid)
}

// Deriv applies the chain rule: J = J_outer(inner(m)) · J_inner(m).
func (c *composed) Deriv(m quantity.Array) (Jacobian, error) {
	mid, err := c.applyInner(m)
	if err != nil {
		return nil, err
	}
	jOuter, err := c.outer.Deriv(mid)
	if err != nil {
		return nil, err
	}
	jInner, err := c.inner.Deriv(m)
	if err != nil {
		return nil, err
	}
	return MulJacobian(jOuter, jInner)
}

func (c *composed) applyInner(m quantity.Array) (quantity.Array, error) {
	v, err := c.inner.Apply(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.inner, err)
	}
	mid, err := quantity.AsArray(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.inner, err)
	}
	return mid, nil
}

func (c *composed) String() string {
	return c.outer.String() + " * " + c.inner.String()
}
