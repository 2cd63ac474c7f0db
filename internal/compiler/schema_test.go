package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSchemaBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		schema: "dc"

		quantity: sigma: {
			description: "Electrical conductivity (S/m)"
			invertible:  true
		}
		quantity: rho: {
			description: "Electrical resistivity (Ohm m)"
			invertible:  true
			reciprocal:  "sigma"
		}
		quantity: mu: {
			description: "Magnetic permeability"
			default:     1.25663706212e-6
		}
		quantity: n: {
			description: "Turns"
			default:     3
		}
	`)
	require.NoError(t, v.Err())

	spec, err := CompileSchema(v)
	require.NoError(t, err)

	assert.Equal(t, "dc", spec.Name)
	require.Len(t, spec.Quantities, 4)

	sigma := spec.Quantities[0]
	assert.Equal(t, "sigma", sigma.Name)
	assert.True(t, sigma.Invertible)
	assert.Empty(t, sigma.Reciprocal)
	assert.Nil(t, sigma.Default)

	rho := spec.Quantities[1]
	assert.Equal(t, "sigma", rho.Reciprocal)

	mu := spec.Quantities[2]
	assert.False(t, mu.Invertible)
	require.NotNil(t, mu.Default)
	assert.InDelta(t, 1.25663706212e-6, *mu.Default, 1e-18)

	n := spec.Quantities[3]
	require.NotNil(t, n.Default)
	assert.Equal(t, 3.0, *n.Default)
}

func TestCompileSchemaMissingName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		quantity: sigma: description: "conductivity"
	`)
	require.NoError(t, v.Err())

	_, err := CompileSchema(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema name is required")
}

func TestCompileSchemaMissingQuantities(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`schema: "empty"`)
	require.NoError(t, v.Err())

	_, err := CompileSchema(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one quantity")
}

func TestCompileSchemaMissingDescription(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		schema: "dc"
		quantity: sigma: invertible: true
	`)
	require.NoError(t, v.Err())

	_, err := CompileSchema(v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "quantity.sigma.description", ce.Field)
}

func TestCompileSchemaWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"invertible not bool", `schema: "dc", quantity: sigma: { description: "c", invertible: "yes" }`},
		{"reciprocal not string", `schema: "dc", quantity: sigma: { description: "c", reciprocal: 1 }`},
		{"default not number", `schema: "dc", quantity: sigma: { description: "c", default: "one" }`},
		{"description not string", `schema: "dc", quantity: sigma: { description: 1 }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cuecontext.New().CompileString(tt.src)
			require.NoError(t, v.Err())

			_, err := CompileSchema(v)
			assert.Error(t, err)
		})
	}
}

func TestCompileSchemaCUEError(t *testing.T) {
	v := cuecontext.New().CompileString(`
		schema: "dc"
		schema: "em"
	`)

	_, err := CompileSchema(v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "schema", Message: "schema name is required"}
	assert.Equal(t, "schema: schema name is required", err.Error())
}
