package props

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/physprop/internal/maps"
	"github.com/roach88/physprop/internal/quantity"
	"github.com/roach88/physprop/internal/store"
)

// IDGenerator generates instance IDs for log and trace correlation.
// Implemented by UUIDv7Generator (production) and the testutil generators.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 instance IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Instance is one owner of slot values for a Schema, e.g. one simulation.
//
// Thread-safety: every descriptor read or write holds the instance mutex for
// its whole resolution chain or invalidation sweep, so a reader never sees a
// new value next to stale dependents.
type Instance struct {
	mu           sync.Mutex
	id           string
	schema       *Schema
	store        store.Store
	model        quantity.Array // nil means absent
	logger       *slog.Logger
	onValidation func(*TypeValidationError)
}

// InstanceOption configures an Instance.
type InstanceOption func(*instanceConfig)

type instanceConfig struct {
	store        store.Store
	idGen        IDGenerator
	model        quantity.Array
	logger       *slog.Logger
	onValidation func(*TypeValidationError)
}

// WithStore injects the slot substrate. Default: store.NewMemoryStore().
func WithStore(s store.Store) InstanceOption {
	return func(c *instanceConfig) {
		c.store = s
	}
}

// WithIDGenerator sets the instance ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) InstanceOption {
	return func(c *instanceConfig) {
		c.idGen = g
	}
}

// WithModel sets the initial model. A nil m leaves the instance without one.
func WithModel(m quantity.Array) InstanceOption {
	return func(c *instanceConfig) {
		c.model = m.Clone()
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) InstanceOption {
	return func(c *instanceConfig) {
		c.logger = l
	}
}

// WithValidationHook registers a callback invoked for every rejected
// assignment before the error is returned to the caller.
func WithValidationHook(fn func(*TypeValidationError)) InstanceOption {
	return func(c *instanceConfig) {
		c.onValidation = fn
	}
}

// NewInstance creates an instance of s. Declared defaults are written to the
// store without triggering invalidation.
func (s *Schema) NewInstance(opts ...InstanceOption) *Instance {
	cfg := &instanceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.store == nil {
		cfg.store = store.NewMemoryStore()
	}
	if cfg.idGen == nil {
		cfg.idGen = UUIDv7Generator{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	id := cfg.idGen.Generate()
	inst := &Instance{
		id:           id,
		schema:       s,
		store:        cfg.store,
		model:        cfg.model,
		logger:       cfg.logger.With("schema", s.name, "instance", id),
		onValidation: cfg.onValidation,
	}

	for _, p := range s.properties {
		if p.def != nil {
			inst.store.Set(p.name, store.Of(quantity.Copy(p.def)))
		}
	}

	inst.logger.Debug("instance created")
	return inst
}

// ID returns the instance ID.
func (i *Instance) ID() string { return i.id }

// Schema returns the schema the instance was created from.
func (i *Instance) Schema() *Schema { return i.schema }

// Store returns the underlying slot substrate.
func (i *Instance) Store() store.Store { return i.store }

// Model returns the current model. Callers must not modify it.
func (i *Instance) Model() (quantity.Array, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.model, i.model != nil
}

// SetModel replaces the model. v must convert to a numeric array; a scalar
// becomes a one-cell model. A nil slice sets an empty model, which is
// present; use ClearModel to make the model absent.
func (i *Instance) SetModel(v any) error {
	m, err := quantity.AsArray(v)
	if err != nil {
		return i.rejected(&TypeValidationError{Slot: ModelSlot, Expected: "a numeric array", Value: v, Err: err})
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.model = append(quantity.Array{}, m...)
	i.logger.Debug("model set", "cells", len(m))
	return nil
}

// ClearModel makes the model absent.
func (i *Instance) ClearModel() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.model = nil
}

// Raw returns the stored slot for name without any resolution. Array values
// are shared with the store; callers must not modify them.
func (i *Instance) Raw(name string) store.Slot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.store.Get(name)
}

func (i *Instance) rejected(err *TypeValidationError) error {
	i.logger.Debug("assignment rejected", "slot", err.Slot, "expected", err.Expected, "got", fmt.Sprintf("%T", err.Value))
	if i.onValidation != nil {
		i.onValidation(err)
	}
	return err
}

// quantityAt returns a copy of the present value of a property slot.
func (i *Instance) quantityAt(name string) (quantity.Value, bool, error) {
	v, ok := i.store.Get(name).Value()
	if !ok {
		return nil, false, nil
	}
	q, ok := v.(quantity.Value)
	if !ok {
		return nil, false, fmt.Errorf("slot %q holds %T, not a quantity", name, v)
	}
	return quantity.Copy(q), true, nil
}

// transformationAt returns the present value of a mapping slot.
func (i *Instance) transformationAt(name string) (maps.Transformation, bool, error) {
	v, ok := i.store.Get(name).Value()
	if !ok {
		return nil, false, nil
	}
	t, ok := v.(maps.Transformation)
	if !ok {
		return nil, false, fmt.Errorf("slot %q holds %T, not a transformation", name, v)
	}
	return t, true, nil
}

// check verifies that a descriptor of schema s may be used with i.
func (i *Instance) check(s *Schema, name string) error {
	if s == nil || s != i.schema {
		return fmt.Errorf("%s: %w", name, ErrForeignDescriptor)
	}
	return nil
}
