package state

import "sync"

// collection is a snapshot of one entity type. Items are replaced
// wholesale and handed out as deep copies.
type collection[T any] struct {
	mu      sync.RWMutex
	items   []T
	loading bool
	err     error
	clone   func(T) T
}

func newCollection[T any](clone func(T) T) collection[T] {
	return collection[T]{items: []T{}, clone: clone}
}

func (c *collection[T]) replace(items []T) {
	cp := make([]T, len(items))
	for i, it := range items {
		cp[i] = c.clone(it)
	}
	c.mu.Lock()
	c.items = cp
	c.err = nil
	c.mu.Unlock()
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = c.clone(it)
	}
	return out
}

func (c *collection[T]) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *collection[T]) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the failure of the last load, or nil.
func (c *collection[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
