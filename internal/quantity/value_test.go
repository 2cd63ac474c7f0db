package quantity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"float64", 0.25, Scalar(0.25)},
		{"int", 4, Scalar(4)},
		{"scalar", Scalar(2), Scalar(2)},
		{"float slice", []float64{1, 2}, Array{1, 2}},
		{"int slice", []int{1, 2}, Array{1, 2}},
		{"yaml list", []any{1, 2.5}, Array{1, 2.5}},
		{"array", Array{3}, Array{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAnyRejectsNonNumeric(t *testing.T) {
	for _, in := range []any{nil, "1.0", true, []any{1.0, "x"}, []string{"a"}, map[string]any{}} {
		_, err := FromAny(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotNumeric), "got %v", err)
	}
}

func TestAsArrayPromotesScalar(t *testing.T) {
	a, err := AsArray(2.0)
	require.NoError(t, err)
	assert.Equal(t, Array{2}, a)
}

func TestReciprocal(t *testing.T) {
	assert.Equal(t, Scalar(0.25), Reciprocal(Scalar(4)))
	assert.Equal(t, Array{1, 0.5}, Reciprocal(Array{1, 2}))

	inf := Reciprocal(Array{0}).(Array)
	assert.True(t, math.IsInf(inf[0], 1))
}

func TestReciprocalDoesNotAlias(t *testing.T) {
	in := Array{2, 4}
	out := Reciprocal(in).(Array)
	out[0] = 99
	assert.Equal(t, Array{2, 4}, in)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Array{1, 0.5}, Array{1, 0.5000000001}, 1e-9))
	assert.False(t, Equal(Array{1, 0.5}, Array{1, 0.6}, 1e-9))
	assert.False(t, Equal(Array{1}, Array{1, 2}, 1e-9))
	assert.False(t, Equal(Scalar(1), Array{1}, 1e-9))
	assert.True(t, Equal(Scalar(0.25), Scalar(0.25), 0))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.25", Format(Scalar(0.25)))
	assert.Equal(t, "[1, 0.5]", Format(Array{1, 0.5}))
	assert.Equal(t, "<absent>", Format(nil))
}

func TestCopy(t *testing.T) {
	a := Array{1, 2}
	c := Copy(a).(Array)
	c[0] = 9
	assert.Equal(t, Array{1, 2}, a)

	assert.Equal(t, Scalar(3), Copy(Scalar(3)))
	assert.Nil(t, Copy(nil))
}
