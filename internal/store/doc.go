// Package store provides per-instance named-slot storage for physprop.
//
// Every slot is in one of three states:
//   - Never assigned: Get returns Absent and HasExplicit reports false
//   - Explicit absent: Get returns Absent and HasExplicit reports true
//   - Present: Get returns a slot holding a value
//
// Property resolution only distinguishes present from absent. The explicit
// absent state is what invalidation writes to a slot that held nothing
// explicit. A slot that was already explicit is removed instead, so repeated
// invalidation alternates between the two absent states.
//
// # Implementations
//
// MemoryStore is the only implementation. Instances create one each unless
// a store is injected with props.WithStore; the scenario harness injects its
// own to capture the final state and dump it on failure.
package store
