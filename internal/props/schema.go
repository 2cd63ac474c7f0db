package props

import (
	"fmt"

	"github.com/roach88/physprop/internal/maps"
	"github.com/roach88/physprop/internal/quantity"
)

// ModelSlot is the reserved name under which by-name access reaches the
// instance model.
const ModelSlot = "model"

// SlotKind identifies what a schema slot name refers to.
type SlotKind string

const (
	KindModel      SlotKind = "model"
	KindProperty   SlotKind = "property"
	KindMapping    SlotKind = "mapping"
	KindDerivative SlotKind = "derivative"
)

// Dependents lists the slots a write to one slot touches.
type Dependents struct {
	// Supersedes are explicit values removed before a present value is
	// stored (the reciprocal property of a PhysicalProperty).
	Supersedes []string `json:"supersedes,omitempty"`

	// Invalidates are cleared after every store.
	Invalidates []string `json:"invalidates,omitempty"`
}

// Schema is a built, immutable descriptor graph. It is shared by all of its
// instances and holds no per-instance state.
type Schema struct {
	name        string
	properties  []*PhysicalProperty
	mappings    []*Mapping
	derivatives []*Derivative
	kinds       map[string]SlotKind
	dependents  map[string]Dependents
}

func newSchema(b *Builder) *Schema {
	s := &Schema{
		name:        b.name,
		properties:  b.properties,
		mappings:    b.mappings,
		derivatives: b.derivatives,
		kinds:       map[string]SlotKind{ModelSlot: KindModel},
		dependents:  make(map[string]Dependents),
	}

	for _, p := range s.properties {
		p.schema = s
		s.kinds[p.name] = KindProperty
		s.dependents[p.name] = propertyDependents(p)
	}
	for _, m := range s.mappings {
		m.schema = s
		s.kinds[m.name] = KindMapping
		s.dependents[m.name] = mappingDependents(m)
	}
	for _, d := range s.derivatives {
		d.schema = s
		s.kinds[d.name] = KindDerivative
	}
	return s
}

// propertyDependents: a direct value supersedes the reciprocal's value and
// makes both mapping paths moot.
func propertyDependents(p *PhysicalProperty) Dependents {
	var deps Dependents
	if p.reciprocal != nil {
		deps.Supersedes = append(deps.Supersedes, p.reciprocal.name)
	}
	if p.mapping != nil {
		deps.Invalidates = append(deps.Invalidates, p.mapping.name)
	}
	if p.reciprocal != nil && p.reciprocal.mapping != nil {
		deps.Invalidates = append(deps.Invalidates, p.reciprocal.mapping.name)
	}
	return deps
}

// mappingDependents: a new mapping clears the bound property, the reciprocal
// property and the reciprocal mapping.
func mappingDependents(m *Mapping) Dependents {
	var deps Dependents
	deps.Invalidates = append(deps.Invalidates, m.prop.name)
	if rp := m.ReciprocalProperty(); rp != nil {
		deps.Invalidates = append(deps.Invalidates, rp.name)
	}
	if rm := m.ReciprocalMapping(); rm != nil {
		deps.Invalidates = append(deps.Invalidates, rm.name)
	}
	return deps
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Properties returns the properties in declaration order.
func (s *Schema) Properties() []*PhysicalProperty { return s.properties }

// Mappings returns the mappings in declaration order.
func (s *Schema) Mappings() []*Mapping { return s.mappings }

// Derivatives returns the derivatives in declaration order.
func (s *Schema) Derivatives() []*Derivative { return s.derivatives }

// Kind returns what name refers to.
func (s *Schema) Kind(name string) (SlotKind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

// Dependents returns the invalidation edges of a property or mapping slot.
func (s *Schema) Dependents(name string) Dependents {
	return s.dependents[name]
}

// Property looks up a property by name.
func (s *Schema) Property(name string) (*PhysicalProperty, bool) {
	for _, p := range s.properties {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Mapping looks up a mapping by name.
func (s *Schema) Mapping(name string) (*Mapping, bool) {
	for _, m := range s.mappings {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

// Derivative looks up a derivative by name.
func (s *Schema) Derivative(name string) (*Derivative, bool) {
	for _, d := range s.derivatives {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}

// Get reads any slot by name. The result is a quantity.Value for the model
// and properties, a maps.Transformation for mappings and a maps.Jacobian for
// derivatives. A nil result with a nil error means absent.
func (s *Schema) Get(inst *Instance, name string) (any, error) {
	kind, ok := s.kinds[name]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", name, ErrUnknownSlot)
	}
	switch kind {
	case KindModel:
		if m, ok := inst.Model(); ok {
			return m, nil
		}
		return nil, nil
	case KindProperty:
		p, _ := s.Property(name)
		v, err := p.Get(inst)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case KindMapping:
		m, _ := s.Mapping(name)
		t, err := m.Get(inst)
		if t == nil || err != nil {
			return nil, err
		}
		return t, nil
	default:
		d, _ := s.Derivative(name)
		return d.Get(inst)
	}
}

// Deriv reads a derivative by name.
func (s *Schema) Deriv(inst *Instance, name string) (maps.Jacobian, error) {
	d, ok := s.Derivative(name)
	if !ok {
		return nil, fmt.Errorf("deriv %q: %w", name, ErrUnknownSlot)
	}
	return d.Get(inst)
}

// Set writes a property, mapping or the model by name. A nil v writes absent.
// Mapping values may be given as a maps.Transformation or as an expression
// string understood by maps.Parse.
func (s *Schema) Set(inst *Instance, name string, v any) error {
	kind, ok := s.kinds[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownSlot)
	}
	switch kind {
	case KindModel:
		if v == nil {
			inst.ClearModel()
			return nil
		}
		return inst.SetModel(v)
	case KindProperty:
		p, _ := s.Property(name)
		return p.Set(inst, v)
	case KindMapping:
		m, _ := s.Mapping(name)
		if expr, ok := v.(string); ok {
			t, err := maps.Parse(expr)
			if err != nil {
				return inst.rejected(&TypeValidationError{Slot: name, Expected: "a transformation", Value: v, Err: err})
			}
			v = t
		}
		return m.Set(inst, v)
	default:
		return fmt.Errorf("set %q: %w", name, ErrReadOnly)
	}
}

// Delete resets a property or mapping slot to absent without cascading.
func (s *Schema) Delete(inst *Instance, name string) error {
	kind, ok := s.kinds[name]
	if !ok {
		return fmt.Errorf("delete %q: %w", name, ErrUnknownSlot)
	}
	switch kind {
	case KindModel:
		inst.ClearModel()
		return nil
	case KindProperty:
		p, _ := s.Property(name)
		return p.Delete(inst)
	case KindMapping:
		m, _ := s.Mapping(name)
		return m.Delete(inst)
	default:
		return fmt.Errorf("delete %q: %w", name, ErrReadOnly)
	}
}

// Describe renders a resolved slot value for humans.
func Describe(v any) string {
	switch val := v.(type) {
	case nil:
		return "<absent>"
	case quantity.Value:
		return quantity.Format(val)
	case maps.Transformation:
		return val.String()
	case maps.Zero:
		return "Zero"
	case maps.Diagonal:
		return "diag" + quantity.Format(quantity.Array(val))
	case maps.Dense:
		return fmt.Sprintf("dense(%dx%d)%s", val.Rows, val.Cols, quantity.Format(quantity.Array(val.Data)))
	default:
		return fmt.Sprintf("%v", v)
	}
}
