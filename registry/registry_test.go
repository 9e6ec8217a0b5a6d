package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

// Test key type for registry tests
type testKey struct {
	name      string
	qualifier string
}

func TestNew(t *testing.T) {
	reg := New[testKey, int]()
	if reg == nil {
		t.Fatal("New() returned nil")
	}
	if reg.entries == nil {
		t.Error("Registry.entries is nil")
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegister_Success(t *testing.T) {
	reg := New[testKey, string]()
	key := testKey{name: "store"}

	if err := reg.Register(key, "primary"); err != nil {
		t.Errorf("Register() returned error: %v", err)
	}

	// Verify entry was stored
	if !reg.Has(key) {
		t.Error("Entry not found after Register()")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	reg := New[testKey, string]()
	key := testKey{name: "store"}

	// First registration should succeed
	if err := reg.Register(key, "first"); err != nil {
		t.Fatalf("First Register() failed: %v", err)
	}

	// Second registration should fail
	err := reg.Register(key, "second")
	if err == nil {
		t.Fatal("Expected error for duplicate registration, got nil")
	}

	var exists *AlreadyRegisteredError
	if !errors.As(err, &exists) {
		t.Fatalf("Expected AlreadyRegisteredError, got %T", err)
	}
	if exists.Key != key {
		t.Errorf("AlreadyRegisteredError.Key = %v, want %v", exists.Key, key)
	}

	// The first entry is kept
	if got, _ := reg.Get(key).Get(); got != "first" {
		t.Errorf("Get() = %q, want %q", got, "first")
	}
}

func TestRegister_QualifiedKeysAreDistinct(t *testing.T) {
	reg := New[testKey, string]()

	if err := reg.Register(testKey{name: "store"}, "plain"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Register(testKey{name: "store", qualifier: "replica"}, "replica"); err != nil {
		t.Errorf("Register() of qualified key failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestGet_Success(t *testing.T) {
	reg := New[testKey, int]()
	key := testKey{name: "answer"}
	_ = reg.Register(key, 42)

	got, ok := reg.Get(key).Get()
	if !ok {
		t.Fatal("Get() returned None for a registered key")
	}
	if got != 42 {
		t.Errorf("Get() = %d, want 42", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	reg := New[testKey, int]()

	if reg.Get(testKey{name: "missing"}).IsPresent() {
		t.Error("Expected None for unregistered key")
	}
}

func TestHas_ExistsAndNotExists(t *testing.T) {
	reg := New[testKey, int]()
	key := testKey{name: "present"}
	_ = reg.Register(key, 1)

	if !reg.Has(key) {
		t.Error("Has() returned false for registered key")
	}
	if reg.Has(testKey{name: "absent"}) {
		t.Error("Has() returned true for unregistered key")
	}
}

func TestLoadOrStore(t *testing.T) {
	reg := New[testKey, string]()
	key := testKey{name: "store"}

	actual, loaded := reg.LoadOrStore(key, "first")
	if loaded || actual != "first" {
		t.Errorf("LoadOrStore() = (%q, %v), want (first, false)", actual, loaded)
	}

	actual, loaded = reg.LoadOrStore(key, "second")
	if !loaded || actual != "first" {
		t.Errorf("LoadOrStore() = (%q, %v), want (first, true)", actual, loaded)
	}
}

func TestGetOrCreate_BuildsOnce(t *testing.T) {
	reg := New[testKey, string]()
	key := testKey{name: "lazy"}
	builds := 0
	build := func() (string, error) {
		builds++
		return "built", nil
	}

	for i := 0; i < 3; i++ {
		got, err := reg.GetOrCreate(key, build)
		if err != nil {
			t.Fatalf("GetOrCreate() returned error: %v", err)
		}
		if got != "built" {
			t.Errorf("GetOrCreate() = %q, want %q", got, "built")
		}
	}
	if builds != 1 {
		t.Errorf("build called %d times, want 1", builds)
	}
}

func TestGetOrCreate_ErrorStoresNothing(t *testing.T) {
	reg := New[testKey, string]()
	key := testKey{name: "failing"}
	want := errors.New("build failed")

	_, err := reg.GetOrCreate(key, func() (string, error) { return "", want })
	if !errors.Is(err, want) {
		t.Fatalf("GetOrCreate() error = %v, want %v", err, want)
	}
	if reg.Has(key) {
		t.Error("Failed build must not store an entry")
	}
}

func TestGetOrCreate_BuildMayUseRegistry(t *testing.T) {
	reg := New[testKey, string]()
	outer := testKey{name: "outer"}
	inner := testKey{name: "inner"}

	got, err := reg.GetOrCreate(outer, func() (string, error) {
		v, err := reg.GetOrCreate(inner, func() (string, error) { return "inner", nil })
		return "outer+" + v, err
	})
	if err != nil {
		t.Fatalf("GetOrCreate() returned error: %v", err)
	}
	if got != "outer+inner" {
		t.Errorf("GetOrCreate() = %q, want %q", got, "outer+inner")
	}
	if keys := reg.Keys(); len(keys) != 2 || keys[0] != inner || keys[1] != outer {
		t.Errorf("Keys() = %v, want [inner outer]", keys)
	}
}

func TestGetOrCreate_ConcurrentCallersConverge(t *testing.T) {
	reg := New[testKey, *int]()
	key := testKey{name: "shared"}
	var counter atomic.Int32

	const goroutines = 50
	results := make([]*int, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := reg.GetOrCreate(key, func() (*int, error) {
				n := int(counter.Add(1))
				return &n, nil
			})
			if err != nil {
				t.Errorf("GetOrCreate() returned error: %v", err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	// Several builders may run, but every caller sees the stored winner.
	for i, v := range results {
		if v != results[0] {
			t.Errorf("goroutine %d got a different value than goroutine 0", i)
		}
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestKeys_InsertionOrder(t *testing.T) {
	reg := New[testKey, int]()
	want := []testKey{{name: "c"}, {name: "a"}, {name: "b"}}
	for i, k := range want {
		_ = reg.Register(k, i)
	}

	got := reg.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() returned %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// The returned slice is a copy
	got[0] = testKey{name: "mutated"}
	if reg.Keys()[0] != want[0] {
		t.Error("Keys() must return a copy")
	}
}

func TestKeys_Empty(t *testing.T) {
	reg := New[testKey, int]()

	if keys := reg.Keys(); len(keys) != 0 {
		t.Errorf("Expected empty slice, got %d keys", len(keys))
	}
}

func TestConcurrentReads(t *testing.T) {
	reg := New[testKey, int]()
	key := testKey{name: "read"}
	_ = reg.Register(key, 1)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !reg.Has(key) {
				t.Error("Has() returned false during concurrent reads")
			}
			if !reg.Get(key).IsPresent() {
				t.Error("Get() returned None during concurrent reads")
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	reg := New[testKey, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(testKey{name: fmt.Sprintf("key-%d", i)}, i)
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = reg.Has(testKey{name: fmt.Sprintf("key-%d", i)})
			_ = reg.Keys()
		}(i)
	}
	wg.Wait()

	if reg.Len() != 50 {
		t.Errorf("Len() = %d, want 50", reg.Len())
	}
}

func TestAlreadyRegisteredError_Error(t *testing.T) {
	err := &AlreadyRegisteredError{Key: "store"}

	want := "key store already registered"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
