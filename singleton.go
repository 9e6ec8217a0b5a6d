package ceangal

import (
	"sync"
)

// singletonEntry holds one singleton value. Its mutex is held across
// construction so concurrent first callers wait for a single build.
type singletonEntry struct {
	mu    sync.Mutex
	done  bool
	value any
}

// singletonCache maps keys to singleton values.
//
// The cache-wide lock only guards the entry map. Construction happens under
// the entry's own lock: singletons depending on other singletons construct
// them while their own entry is held, and sync.Mutex is not re-entrant.
type singletonCache struct {
	instances map[Key]*singletonEntry
	mu        sync.RWMutex
}

// newSingletonCache creates a new singleton cache.
func newSingletonCache() *singletonCache {
	return &singletonCache{
		instances: make(map[Key]*singletonEntry),
	}
}

// getOrCreate returns the value cached for key, calling factory if there is
// none yet. factory succeeds at most once per key, even under concurrent
// access. A failed factory leaves nothing cached, so a later call retries.
// created is true for the call that stored the value.
//
// This method is goroutine-safe.
func (sc *singletonCache) getOrCreate(key Key, factory func() (any, error)) (value any, created bool, err error) {
	entry := sc.entry(key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.done {
		return entry.value, false, nil
	}

	value, err = factory()
	if err != nil {
		return nil, false, err
	}

	entry.value = value
	entry.done = true
	return value, true, nil
}

// has reports whether a value is cached for key.
func (sc *singletonCache) has(key Key) bool {
	sc.mu.RLock()
	entry, exists := sc.instances[key]
	sc.mu.RUnlock()

	if !exists {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.done
}

func (sc *singletonCache) entry(key Key) *singletonEntry {
	// Fast path: check if entry exists (read lock)
	sc.mu.RLock()
	entry, exists := sc.instances[key]
	sc.mu.RUnlock()

	if exists {
		return entry
	}

	// Slow path: create entry (write lock)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Double-check after acquiring write lock
	entry, exists = sc.instances[key]
	if !exists {
		entry = &singletonEntry{}
		sc.instances[key] = entry
	}
	return entry
}
