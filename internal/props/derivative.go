package props

import (
	"fmt"

	"github.com/roach88/physprop/internal/maps"
)

// Derivative is the read-only sensitivity of a property to the model.
type Derivative struct {
	name        string
	description string
	prop        *PhysicalProperty
	owner       *Builder
	schema      *Schema
}

// Name returns the slot name.
func (d *Derivative) Name() string { return d.name }

// Description returns the generated description.
func (d *Derivative) Description() string { return d.description }

// Property returns the property the derivative reports on.
func (d *Derivative) Property() *PhysicalProperty { return d.prop }

// Mapping looks through to the property's mapping.
func (d *Derivative) Mapping() *Mapping {
	if d.prop == nil {
		return nil
	}
	return d.prop.mapping
}

// Get returns the Jacobian of the property with respect to the model.
//
// It is maps.Zero when there is no mapping or the mapping resolves absent:
// the property does not depend on the model.
func (d *Derivative) Get(inst *Instance) (maps.Jacobian, error) {
	if err := inst.check(d.schema, d.name); err != nil {
		return nil, err
	}
	m := d.Mapping()
	if m == nil {
		return maps.Zero{}, nil
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	t, err := m.resolve(inst)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return maps.Zero{}, nil
	}
	if inst.model == nil {
		return nil, newMissingModelError(inst, d.name)
	}
	j, err := t.Deriv(inst.model)
	if err != nil {
		return nil, fmt.Errorf("%s: deriv %s: %w", d.name, t, err)
	}
	return j, nil
}
