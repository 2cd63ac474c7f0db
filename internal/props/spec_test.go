package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/physprop/internal/ir"
	"github.com/roach88/physprop/internal/quantity"
)

func TestFromSpec(t *testing.T) {
	mu := 1.25663706212e-06
	spec := ir.SchemaSpec{
		Name: "dc",
		Quantities: []ir.QuantitySpec{
			{Name: "sigma", Description: "Electrical conductivity (S/m)", Invertible: true},
			{Name: "rho", Description: "Electrical resistivity (Ohm m)", Invertible: true, Reciprocal: "sigma"},
			{Name: "mu", Description: "Magnetic permeability", Default: &mu},
		},
	}

	s, err := FromSpec(spec)
	require.NoError(t, err)

	sigma, ok := s.Property("sigma")
	require.True(t, ok)
	rho, ok := s.Property("rho")
	require.True(t, ok)
	assert.Same(t, rho, sigma.Reciprocal())
	assert.Same(t, sigma, rho.Reciprocal())

	_, ok = s.Mapping("rhoMap")
	assert.True(t, ok)
	_, ok = s.Derivative("sigmaDeriv")
	assert.True(t, ok)
	_, ok = s.Kind("muMap")
	assert.False(t, ok)

	inst := newTestInstance(s)
	v, err := s.Get(inst, "mu")
	require.NoError(t, err)
	assert.Equal(t, quantity.Scalar(mu), v)
}

func TestFromSpecBothSidesDeclareReciprocal(t *testing.T) {
	spec := ir.SchemaSpec{
		Name: "dc",
		Quantities: []ir.QuantitySpec{
			{Name: "sigma", Description: "conductivity", Reciprocal: "rho"},
			{Name: "rho", Description: "resistivity", Reciprocal: "sigma"},
		},
	}

	_, err := FromSpec(spec)
	require.NoError(t, err)
}

func TestFromSpecUnknownReciprocal(t *testing.T) {
	spec := ir.SchemaSpec{
		Name:       "dc",
		Quantities: []ir.QuantitySpec{{Name: "sigma", Description: "conductivity", Reciprocal: "rho"}},
	}

	_, err := FromSpec(spec)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, err.Error(), `unknown reciprocal "rho"`)
}
