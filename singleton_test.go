package ceangal

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types for singleton scoping
type database struct {
	Singleton
	dsn string
}

type repository struct {
	Singleton
	db *database
}

func (r *repository) Inject(db *database) {
	r.db = db
}

type handler struct {
	repo *repository
}

func (h *handler) Inject(r *repository) {
	h.repo = r
}

type service struct {
	id int32
}

type serviceModule struct {
	builds *atomic.Int32
}

func (m serviceModule) ProvideService() *service {
	return &service{id: m.builds.Add(1)}
}

func (serviceModule) Annotations() map[string]Annotation {
	return map[string]Annotation{"ProvideService": {Singleton: true}}
}

type databaseModule struct{}

func (databaseModule) ProvideDatabase() *database {
	return &database{dsn: "postgres://localhost"}
}

type flakyModule struct {
	attempts *int
}

func (m flakyModule) ProvideService() (*service, error) {
	*m.attempts++
	if *m.attempts == 1 {
		return nil, errors.New("not ready")
	}
	return &service{id: int32(*m.attempts)}, nil
}

func (flakyModule) Annotations() map[string]Annotation {
	return map[string]Annotation{"ProvideService": {Singleton: true}}
}

func TestSingleton_TypeMarker(t *testing.T) {
	container, err := New()
	require.NoError(t, err)

	first := MustInstance[*database](container)
	second := MustInstance[*database](container)
	assert.Same(t, first, second)
}

func TestSingleton_TypeMarkerAppliesToFactories(t *testing.T) {
	container, err := With(databaseModule{})
	require.NoError(t, err)

	first := MustInstance[*database](container)
	second := MustInstance[*database](container)
	assert.Same(t, first, second)
	assert.Equal(t, "postgres://localhost", first.dsn)
}

func TestSingleton_Annotation(t *testing.T) {
	builds := &atomic.Int32{}
	container, err := With(serviceModule{builds: builds})
	require.NoError(t, err)

	first := MustInstance[*service](container)
	second := MustInstance[*service](container)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), builds.Load())
}

func TestSingleton_ConcurrentFirstAccess(t *testing.T) {
	builds := &atomic.Int32{}
	container, err := With(serviceModule{builds: builds})
	require.NoError(t, err)

	const goroutines = 100
	results := make([]*service, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustInstance[*service](container)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load(), "factory must run exactly once")
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestSingleton_FailureIsNotCached(t *testing.T) {
	attempts := 0
	container, err := With(flakyModule{attempts: &attempts})
	require.NoError(t, err)

	_, err = Instance[*service](container)
	var ctorErr *ConstructionError
	require.ErrorAs(t, err, &ctorErr)
	assert.False(t, container.singletons.has(KeyOf[*service]()))

	first, err := Instance[*service](container)
	require.NoError(t, err)
	second, err := Instance[*service](container)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 2, attempts)
}

func TestSingleton_NestedSingletons(t *testing.T) {
	container, err := New()
	require.NoError(t, err)

	repo := MustInstance[*repository](container)
	db := MustInstance[*database](container)

	assert.Same(t, db, repo.db)
	assert.Same(t, repo, MustInstance[*repository](container))
}

func TestSingleton_SharedByTransients(t *testing.T) {
	container, err := New()
	require.NoError(t, err)

	h1 := MustInstance[*handler](container)
	h2 := MustInstance[*handler](container)

	assert.NotSame(t, h1, h2)
	assert.Same(t, h1.repo, h2.repo)
}

func TestSingleton_ProviderReturnsCachedValue(t *testing.T) {
	container, err := New()
	require.NoError(t, err)

	p, err := ProviderOf[*database](container)
	require.NoError(t, err)
	assert.Same(t, p.MustGet(), p.MustGet())
}

func TestSingleton_PerQualifier(t *testing.T) {
	container, err := New()
	require.NoError(t, err)

	primary := MustInstance[*database](container, "primary")
	replica := MustInstance[*database](container, "replica")

	assert.NotSame(t, primary, replica)
	assert.Same(t, primary, MustInstance[*database](container, "primary"))
}

func TestSingletonCache_GetOrCreate(t *testing.T) {
	cache := newSingletonCache()
	key := KeyOf[*service]()
	calls := 0
	factory := func() (any, error) {
		calls++
		return &service{id: int32(calls)}, nil
	}

	assert.False(t, cache.has(key))

	v1, created, err := cache.getOrCreate(key, factory)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, cache.has(key))

	v2, created, err := cache.getOrCreate(key, factory)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestSingletonCache_Error(t *testing.T) {
	cache := newSingletonCache()
	key := KeyOf[*service]()
	want := errors.New("failed")

	_, created, err := cache.getOrCreate(key, func() (any, error) { return nil, want })
	require.ErrorIs(t, err, want)
	assert.False(t, created)
	assert.False(t, cache.has(key))
}
