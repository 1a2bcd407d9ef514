package ecs

// Registry tracks every component store created through NewStore so that a
// destroyed entity leaves no component behind.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 16),
	}
}

// Register adds a component store to the registry.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// Len returns the number of registered stores.
func (r *Registry) Len() int { return len(r.stores) }

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
