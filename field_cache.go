package ceangal

import (
	"reflect"
	"sync"
)

// fieldCache caches injectable-field descriptors per concrete struct type.
// Entries are computed once and never invalidated.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]Field
}

// newFieldCache creates a new field cache.
func newFieldCache() *fieldCache {
	return &fieldCache{
		fields: make(map[reflect.Type][]Field),
	}
}

// get retrieves or computes the descriptors of typ.
// Failed computations are not cached.
func (fc *fieldCache) get(typ reflect.Type, compute func(reflect.Type) ([]Field, error)) ([]Field, error) {
	// Fast path: check cache with read lock
	fc.mu.RLock()
	fields, exists := fc.fields[typ]
	fc.mu.RUnlock()

	if exists {
		return fields, nil
	}

	// Slow path: compute and cache with write lock
	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Double-check after acquiring write lock
	fields, exists = fc.fields[typ]
	if exists {
		return fields, nil
	}

	fields, err := compute(typ)
	if err != nil {
		return nil, err
	}

	fc.fields[typ] = fields
	return fields, nil
}

// len returns the number of cached types.
func (fc *fieldCache) len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.fields)
}
