package props

import (
	"fmt"

	"github.com/roach88/physprop/internal/quantity"
	"github.com/roach88/physprop/internal/store"
)

// PhysicalProperty is a quantity descriptor. It resolves, in order, from its
// own explicit value, the explicit value of its reciprocal, the reciprocal's
// derived value, or its mapping applied to the model.
type PhysicalProperty struct {
	name        string
	description string
	mapping     *Mapping
	reciprocal  *PhysicalProperty
	def         quantity.Value
	owner       *Builder
	schema      *Schema
}

// Name returns the slot name.
func (p *PhysicalProperty) Name() string { return p.name }

// Description returns the declared description.
func (p *PhysicalProperty) Description() string { return p.description }

// Mapping returns the bound mapping, or nil.
func (p *PhysicalProperty) Mapping() *Mapping { return p.mapping }

// Reciprocal returns the linked reciprocal property, or nil.
func (p *PhysicalProperty) Reciprocal() *PhysicalProperty { return p.reciprocal }

// Default returns the declared default, if any.
func (p *PhysicalProperty) Default() (quantity.Value, bool) {
	return quantity.Copy(p.def), p.def != nil
}

// Get resolves the property for inst. A nil value with a nil error means
// absent: nothing is declared that could produce a value. The returned value
// shares no storage with the instance.
func (p *PhysicalProperty) Get(inst *Instance) (quantity.Value, error) {
	if err := inst.check(p.schema, p.name); err != nil {
		return nil, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return p.resolve(inst)
}

func (p *PhysicalProperty) resolve(inst *Instance) (quantity.Value, error) {
	v, ok, err := inst.quantityAt(p.name)
	if err != nil || ok {
		return v, err
	}

	if p.reciprocal != nil {
		rv, ok, err := inst.quantityAt(p.reciprocal.name)
		if err != nil {
			return nil, err
		}
		if ok {
			return quantity.Reciprocal(rv), nil
		}
	}

	if p.mapping == nil && p.reciprocal == nil {
		return nil, nil
	}

	if p.mapping == nil {
		if p.reciprocal.mapping == nil {
			return nil, newUnsetDefaultError(inst, p)
		}
		rv, err := p.reciprocal.resolve(inst)
		if err != nil || rv == nil {
			return nil, err
		}
		inst.logger.Debug("resolved through reciprocal", "quantity", p.name, "reciprocal", p.reciprocal.name)
		return quantity.Reciprocal(rv), nil
	}

	t, err := p.mapping.resolve(inst)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, newUnsetMappingError(inst, p)
	}
	if inst.model == nil {
		return nil, newMissingModelError(inst, p.name)
	}
	v, err = t.Apply(inst.model)
	if err != nil {
		return nil, fmt.Errorf("%s: apply %s: %w", p.name, t, err)
	}
	inst.logger.Debug("resolved through mapping", "quantity", p.name, "mapping", t.String())
	return v, nil
}

// Set assigns a value. v must be a numeric scalar or homogeneous numeric
// array; nil (or store.Absent) writes absent without validation.
//
// A present value removes the reciprocal's explicit value first. After the
// store, this property's mapping and the reciprocal's mapping are cleared.
func (p *PhysicalProperty) Set(inst *Instance, v any) error {
	if err := inst.check(p.schema, p.name); err != nil {
		return err
	}

	slot := store.Absent
	if raw, absent := unwrapSlot(v); !absent {
		q, err := quantity.FromAny(raw)
		if err != nil {
			return inst.rejected(&TypeValidationError{Slot: p.name, Expected: "a numeric scalar or array", Value: raw, Err: err})
		}
		if arr, ok := q.(quantity.Array); ok {
			q = arr.Clone()
		}
		slot = store.Of(q)
	}

	deps := p.schema.Dependents(p.name)

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !slot.IsAbsent() {
		inst.supersede(p.name, deps.Supersedes)
	}
	inst.store.Set(p.name, slot)
	inst.invalidate(p.name, deps.Invalidates)
	return nil
}

// Unset writes absent. Equivalent to Set(inst, nil).
func (p *PhysicalProperty) Unset(inst *Instance) error {
	return p.Set(inst, nil)
}

// Delete resets the slot to absent without touching any other slot.
func (p *PhysicalProperty) Delete(inst *Instance) error {
	if err := inst.check(p.schema, p.name); err != nil {
		return err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.store.Set(p.name, store.Absent)
	return nil
}

// unwrapSlot treats nil and an absent store.Slot as the unset sentinel and
// unwraps present slots.
func unwrapSlot(v any) (any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, true
	case store.Slot:
		val, ok := s.Value()
		return val, !ok
	}
	return v, false
}
