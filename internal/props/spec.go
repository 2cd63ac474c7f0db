package props

import (
	"fmt"

	"github.com/roach88/physprop/internal/ir"
)

// FromSpec builds a schema from compiled declarations.
//
// Invertible quantities get the full Triple; the others are plain
// properties. Each reciprocal pair is linked once, whichever side declared
// it. Structural problems are reported by Build as a *BuildError.
func FromSpec(spec ir.SchemaSpec) (*Schema, error) {
	b := NewBuilder(spec.Name)
	props := make(map[string]*PhysicalProperty, len(spec.Quantities))

	for _, q := range spec.Quantities {
		var opts []QuantityOption
		if q.Default != nil {
			opts = append(opts, WithDefault(*q.Default))
		}
		if q.Invertible {
			props[q.Name] = b.Invertible(q.Name, q.Description, opts...).Property
		} else {
			props[q.Name] = b.Property(q.Name, q.Description, opts...)
		}
	}

	for _, pair := range spec.ReciprocalPairs() {
		a, c := props[pair[0]], props[pair[1]]
		if c == nil {
			return nil, &BuildError{
				Schema:   spec.Name,
				Problems: []string{fmt.Sprintf("property %s: unknown reciprocal %q", pair[0], pair[1])},
			}
		}
		b.Reciprocal(a, c)
	}

	return b.Build()
}
