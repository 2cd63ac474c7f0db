package store

import (
	"sort"
	"sync"
)

// MemoryStore implements Store with a map.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]Slot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]Slot)}
}

// Get implements Store.
func (s *MemoryStore) Get(name string) Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[name]
}

// Set implements Store.
func (s *MemoryStore) Set(name string, slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[name] = slot
}

// HasExplicit implements Store.
func (s *MemoryStore) HasExplicit(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slots[name]
	return ok
}

// Delete implements Store.
func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, name)
}

// Names implements Store.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the present values keyed by slot name.
// Explicit absent slots are omitted.
func (s *MemoryStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.slots))
	for name, slot := range s.slots {
		if v, ok := slot.Value(); ok {
			out[name] = v
		}
	}
	return out
}
