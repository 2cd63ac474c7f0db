package props

import (
	"fmt"
	"slices"

	"github.com/roach88/physprop/internal/quantity"
)

// Suffixes appended to a quantity name by Invertible.
const (
	MappingSuffix    = "Map"
	DerivativeSuffix = "Deriv"
)

// Triple is the result of Builder.Invertible: a property, the mapping that
// derives it from the model, and its derivative.
type Triple struct {
	Property   *PhysicalProperty
	Mapping    *Mapping
	Derivative *Derivative
}

// QuantityOption configures a declared quantity.
type QuantityOption func(*quantityConfig)

type quantityConfig struct {
	def any
}

// WithDefault seeds a static default. Every new instance starts with this
// value stored under the property's slot.
func WithDefault(v any) QuantityOption {
	return func(c *quantityConfig) {
		c.def = v
	}
}

// Builder declares the descriptors of one schema.
//
// Links between descriptors are only mutable through the Builder. Build
// checks the whole graph once and freezes it. Declaring after Build panics;
// building twice returns ErrAlreadyBuilt.
type Builder struct {
	name        string
	properties  []*PhysicalProperty
	mappings    []*Mapping
	derivatives []*Derivative
	problems    []string
	built       bool
}

// NewBuilder starts a schema declaration.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Invertible declares a quantity that can be derived from the model.
//
// It returns the property named name, a mapping named name+"Map" bound to
// it, and a derivative named name+"Deriv" bound to the property.
func (b *Builder) Invertible(name, description string, opts ...QuantityOption) Triple {
	b.mustBeOpen("Invertible")

	mapping := &Mapping{
		name:        name + MappingSuffix,
		description: fmt.Sprintf("Mapping of %s to the inversion model.", description),
		owner:       b,
	}
	prop := b.Property(name, description, opts...)
	b.bind(mapping, prop)

	deriv := &Derivative{
		name:        name + DerivativeSuffix,
		description: fmt.Sprintf("Derivative of %s wrt the model.", description),
		prop:        prop,
		owner:       b,
	}

	b.mappings = append(b.mappings, mapping)
	b.derivatives = append(b.derivatives, deriv)
	return Triple{Property: prop, Mapping: mapping, Derivative: deriv}
}

// Property declares a quantity with no model-derived path. It can still be
// linked as a reciprocal.
func (b *Builder) Property(name, description string, opts ...QuantityOption) *PhysicalProperty {
	b.mustBeOpen("Property")

	cfg := &quantityConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	prop := &PhysicalProperty{
		name:        name,
		description: description,
		owner:       b,
	}
	if cfg.def != nil {
		def, err := quantity.FromAny(cfg.def)
		if err != nil {
			b.problems = append(b.problems, fmt.Sprintf("default for %s: %v", name, err))
		} else {
			prop.def = quantity.Copy(def)
		}
	}

	b.properties = append(b.properties, prop)
	return prop
}

// Reciprocal links a and c so that each resolves as 1/x of the other.
//
// Re-linking a property silently replaces its previous partner; Build
// rejects the asymmetric graph this leaves behind.
func (b *Builder) Reciprocal(a, c *PhysicalProperty) {
	b.mustBeOpen("Reciprocal")

	if a == nil || c == nil {
		b.problems = append(b.problems, "reciprocal link with a nil property")
		return
	}
	a.reciprocal = c
	c.reciprocal = a
}

// bind sets both directions of the mapping/property link. A mapping is bound
// exactly once.
func (b *Builder) bind(m *Mapping, p *PhysicalProperty) {
	if m.prop != nil {
		b.problems = append(b.problems, fmt.Sprintf("mapping %s is already bound to %s", m.name, m.prop.name))
		return
	}
	m.prop = p
	p.mapping = m
}

func (b *Builder) mustBeOpen(op string) {
	if b.built {
		panic(fmt.Sprintf("props: %s called on schema %q after Build", op, b.name))
	}
}

// Build checks the declared graph and returns the frozen Schema.
//
// Every problem is collected into a single *BuildError:
//   - duplicate or empty slot names
//   - a mapping whose back-reference disagrees with its property
//   - an asymmetric, self-referencing or foreign reciprocal link
//   - a derivative without a property
//   - a default that is not numeric
func (b *Builder) Build() (*Schema, error) {
	if b.built {
		return nil, fmt.Errorf("props: schema %q: %w", b.name, ErrAlreadyBuilt)
	}

	problems := slices.Clone(b.problems)
	problems = append(problems, b.checkNames()...)
	problems = append(problems, b.checkLinks()...)
	if len(problems) > 0 {
		return nil, &BuildError{Schema: b.name, Problems: problems}
	}

	b.built = true
	return newSchema(b), nil
}

func (b *Builder) checkNames() []string {
	var problems []string
	seen := make(map[string]bool)
	check := func(kind, name string) {
		if name == "" {
			problems = append(problems, fmt.Sprintf("%s with empty name", kind))
			return
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("duplicate slot name %q", name))
		}
		seen[name] = true
	}
	check("model", ModelSlot)
	for _, p := range b.properties {
		check("property", p.name)
	}
	for _, m := range b.mappings {
		check("mapping", m.name)
	}
	for _, d := range b.derivatives {
		check("derivative", d.name)
	}
	return problems
}

func (b *Builder) checkLinks() []string {
	var problems []string

	for _, p := range b.properties {
		if p.mapping != nil && p.mapping.prop != p {
			problems = append(problems, fmt.Sprintf("property %s: mapping %s is bound to another property", p.name, p.mapping.name))
		}
		r := p.reciprocal
		if r == nil {
			continue
		}
		switch {
		case r == p:
			problems = append(problems, fmt.Sprintf("property %s is its own reciprocal", p.name))
		case r.owner != b:
			problems = append(problems, fmt.Sprintf("property %s: reciprocal %s belongs to another schema", p.name, r.name))
		case r.reciprocal != p:
			problems = append(problems, fmt.Sprintf("property %s: reciprocal %s is linked to %s", p.name, r.name, nameOf(r.reciprocal)))
		}
	}

	for _, m := range b.mappings {
		if m.prop == nil {
			problems = append(problems, fmt.Sprintf("mapping %s is not bound to a property", m.name))
			continue
		}
		if m.prop.mapping != m {
			problems = append(problems, fmt.Sprintf("mapping %s: property %s does not point back", m.name, m.prop.name))
		}
	}

	for _, d := range b.derivatives {
		if d.prop == nil {
			problems = append(problems, fmt.Sprintf("derivative %s is not bound to a property", d.name))
		}
	}

	return problems
}

func nameOf(p *PhysicalProperty) string {
	if p == nil {
		return "nothing"
	}
	return p.name
}
