package props

import (
	"github.com/roach88/physprop/internal/maps"
	"github.com/roach88/physprop/internal/store"
)

// Mapping is the descriptor naming the Transformation bound to one property.
type Mapping struct {
	name        string
	description string
	prop        *PhysicalProperty
	owner       *Builder
	schema      *Schema
}

// Name returns the slot name.
func (m *Mapping) Name() string { return m.name }

// Description returns the generated description.
func (m *Mapping) Description() string { return m.description }

// Property returns the bound property.
func (m *Mapping) Property() *PhysicalProperty { return m.prop }

// ReciprocalProperty returns the bound property's reciprocal, or nil.
func (m *Mapping) ReciprocalProperty() *PhysicalProperty {
	if m.prop == nil {
		return nil
	}
	return m.prop.reciprocal
}

// ReciprocalMapping returns the mapping of the bound property's reciprocal,
// or nil.
func (m *Mapping) ReciprocalMapping() *Mapping {
	if rp := m.ReciprocalProperty(); rp != nil {
		return rp.mapping
	}
	return nil
}

// Get resolves the mapping for inst.
//
// An explicit transformation wins. Otherwise, if the reciprocal mapping holds
// a transformation t, the result is maps.ReciprocalOf(t): the inversion is
// composed, not computed. A nil result with a nil error means absent.
func (m *Mapping) Get(inst *Instance) (maps.Transformation, error) {
	if err := inst.check(m.schema, m.name); err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return m.resolve(inst)
}

func (m *Mapping) resolve(inst *Instance) (maps.Transformation, error) {
	t, ok, err := inst.transformationAt(m.name)
	if err != nil || ok {
		return t, err
	}

	rm := m.ReciprocalMapping()
	if rm == nil {
		return nil, nil
	}
	rt, ok, err := inst.transformationAt(rm.name)
	if err != nil || !ok {
		return nil, err
	}
	return maps.ReciprocalOf(rt), nil
}

// Set assigns a transformation; nil (or store.Absent) writes absent without
// validation. After the store the bound property, its reciprocal and the
// reciprocal mapping are cleared.
func (m *Mapping) Set(inst *Instance, v any) error {
	if err := inst.check(m.schema, m.name); err != nil {
		return err
	}

	slot := store.Absent
	if raw, absent := unwrapSlot(v); !absent {
		t, ok := raw.(maps.Transformation)
		if !ok {
			return inst.rejected(&TypeValidationError{Slot: m.name, Expected: "a transformation", Value: raw})
		}
		slot = store.Of(t)
	}

	deps := m.schema.Dependents(m.name)

	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.store.Set(m.name, slot)
	inst.invalidate(m.name, deps.Invalidates)
	return nil
}

// Unset writes absent. Equivalent to Set(inst, nil).
func (m *Mapping) Unset(inst *Instance) error {
	return m.Set(inst, nil)
}

// Delete resets the slot to absent without touching any other slot.
func (m *Mapping) Delete(inst *Instance) error {
	if err := inst.check(m.schema, m.name); err != nil {
		return err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.store.Set(m.name, store.Absent)
	return nil
}
