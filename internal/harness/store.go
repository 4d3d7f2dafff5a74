package harness

import (
	"sort"
	"sync"
)

// Store holds values discovered during a run, typically entity ids pulled
// out of list responses, keyed by name for later cases to splice into their
// arguments. Values persist for the lifetime of one run; nothing invalidates
// them when the entity they point at is later mutated or deleted.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Set records a discovered value. Later writes to the same key win.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Delete removes a key. Used when a case destroys the entity a key points
// at, so later cases do not build on a dangling id.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns the stored keys in sorted order, for stable report output.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the stored values.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
