// Package registry provides thread-safe, append-only storage of bindings.
package registry

import (
	"fmt"
	"sync"

	"github.com/samber/mo"
)

// Registry maps keys to values. Entries are never removed or replaced.
// It uses a map for O(1) lookup and remembers insertion order.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	order   []K
}

// New creates a new, empty Registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// Register stores value under key.
// Returns an *AlreadyRegisteredError if the key is already present.
//
// This method is goroutine-safe.
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return &AlreadyRegisteredError{Key: key}
	}

	r.insert(key, value)
	return nil
}

// Get looks up the value stored under key.
//
// This method is goroutine-safe.
func (r *Registry[K, V]) Get(key K) mo.Option[V] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.entries[key]
	if !exists {
		return mo.None[V]()
	}
	return mo.Some(value)
}

// Has reports whether key is present.
//
// This method is goroutine-safe.
func (r *Registry[K, V]) Has(key K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[key]
	return exists
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores and returns value. The loaded result is true if the value was loaded.
//
// This method is goroutine-safe.
func (r *Registry[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.entries[key]; exists {
		return existing, true
	}

	r.insert(key, value)
	return value, false
}

// GetOrCreate returns the value stored under key, building and inserting it
// if absent. build runs without the lock held, so it may itself use the
// registry. When several goroutines race on the same absent key, each may run
// build, but only the first insert wins and every caller receives that value.
// Nothing is stored when build fails.
//
// This method is goroutine-safe.
func (r *Registry[K, V]) GetOrCreate(key K, build func() (V, error)) (V, error) {
	if existing, ok := r.Get(key).Get(); ok {
		return existing, nil
	}

	value, err := build()
	if err != nil {
		var zero V
		return zero, err
	}

	actual, _ := r.LoadOrStore(key, value)
	return actual, nil
}

// Keys returns all keys in insertion order.
//
// This method is goroutine-safe.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// insert must be called with the write lock held.
func (r *Registry[K, V]) insert(key K, value V) {
	r.entries[key] = value
	r.order = append(r.order, key)
}

// AlreadyRegisteredError is returned when a key is registered twice.
type AlreadyRegisteredError struct {
	Key any
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("key %v already registered", e.Key)
}
