package props

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/physprop/internal/logging"
	"github.com/roach88/physprop/internal/testutil"
)

// dcSchema is the conductivity/resistivity pair used across the tests: both
// invertible, linked as reciprocals, plus an unlinked property with no model
// path.
type dcSchema struct {
	*Schema
	conductivity Triple
	resistivity  Triple
	label        *PhysicalProperty
}

func newDCSchema(t *testing.T) dcSchema {
	t.Helper()

	b := NewBuilder("dc")
	cond := b.Invertible("conductivity", "Electrical conductivity (S/m)")
	res := b.Invertible("resistivity", "Electrical resistivity (Ohm m)")
	label := b.Property("label", "Unlinked quantity")
	b.Reciprocal(cond.Property, res.Property)

	s, err := b.Build()
	require.NoError(t, err)

	return dcSchema{Schema: s, conductivity: cond, resistivity: res, label: label}
}

func quietLogger() *slog.Logger {
	return logging.Discard()
}

func newTestInstance(s *Schema, opts ...InstanceOption) *Instance {
	base := []InstanceOption{
		WithIDGenerator(testutil.NewFixedIDGenerator("test-instance-1")),
		WithLogger(quietLogger()),
	}
	return s.NewInstance(append(base, opts...)...)
}
