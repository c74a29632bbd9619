package memory

import (
	"sync"
)

// store is a mutex guarded map that remembers insertion order.
// Every read-modify-write runs under the write lock so two updates to the
// same record can never interleave.
type store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	idOf  func(T) string
}

func newStore[T any](idOf func(T) string) *store[T] {
	return &store[T]{
		items: make(map[string]T),
		idOf:  idOf,
	}
}

// insertLocked reports false when the id is already taken. Callers hold mu.
func (s *store[T]) insertLocked(v T) bool {
	id := s.idOf(v)
	if _, exists := s.items[id]; exists {
		return false
	}

	s.items[id] = v
	s.order = append(s.order, id)
	return true
}

func (s *store[T]) get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[id]
	return v, ok
}

func (s *store[T]) list(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		v := s.items[id]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}
