package store

// Slot is the content of one named slot: either a value or absent.
//
// The zero Slot is absent. Absent is a state of the slot, not a value, so a
// slot that was explicitly assigned absent is still distinguishable from one
// that was never assigned (see Store.HasExplicit).
type Slot struct {
	value   any
	present bool
}

// Absent is the empty slot.
var Absent = Slot{}

// Of wraps v as a present slot. Of(nil) is Absent.
func Of(v any) Slot {
	if v == nil {
		return Absent
	}
	return Slot{value: v, present: true}
}

// Value returns the slot content and whether it is present.
func (s Slot) Value() (any, bool) {
	return s.value, s.present
}

// IsAbsent reports whether the slot holds no value.
func (s Slot) IsAbsent() bool {
	return !s.present
}

// Store is per-instance named-slot storage.
//
// Implementations are not required to be safe for concurrent use; the owning
// instance serializes access.
type Store interface {
	// Get returns the slot for name, or Absent if it was never assigned.
	Get(name string) Slot

	// Set assigns a slot. Set(name, Absent) records an explicit absent value:
	// the slot reads as absent but HasExplicit reports true.
	Set(name string, s Slot)

	// HasExplicit reports whether name was assigned and not deleted since,
	// regardless of whether the current content is absent.
	HasExplicit(name string) bool

	// Delete removes name entirely. Deleting an unknown name is a no-op.
	Delete(name string)

	// Names returns every explicitly assigned name in sorted order.
	Names() []string
}
