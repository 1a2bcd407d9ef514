package ecs

import "sort"

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a generic typed map store for ECS components.
// No reflect, no interface{}: pure generics.
//
// Map iteration order is random, so every ordered walk goes through
// SortedIDs: systems see entities in ascending EntityID order every tick.
type PtrComponentStore[T any] struct {
	data map[EntityID]*T
	ids  []EntityID // reusable buffer for SortedIDs (game loop only)
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data: make(map[EntityID]*T, 256),
	}
}

// NewStore creates a store and registers it with the world so that
// FlushDestroyQueue clears it.
func NewStore[T any](w *World) *PtrComponentStore[T] {
	s := NewPtrComponentStore[T]()
	w.Registry().Register(s)
	return s
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// SortedIDs returns the ids in the store in ascending order. The returned
// slice is reused by the next call.
func (s *PtrComponentStore[T]) SortedIDs() []EntityID {
	s.ids = s.ids[:0]
	for id := range s.data {
		s.ids = append(s.ids, id)
	}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	return s.ids
}

// Each visits every component in ascending id order. fn may remove the
// visited entity from this or any other store.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	ids := append([]EntityID(nil), s.SortedIDs()...)
	for _, id := range ids {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}
