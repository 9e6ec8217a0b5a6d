package ceangal

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/toutaio/toutago-ceangal-injector/registry"
)

// Container resolves keys into values.
// It is safe for concurrent use for its entire lifetime.
type Container struct {
	providers  *registry.Registry[Key, *binding]
	singletons *singletonCache
	fields     *fieldCache
	metadata   MetadataSource
	invoker    Invoker
	modules    []any
	log        zerolog.Logger
}

// New creates a container and registers every factory of every module.
// Factories are registered, not executed.
//
// Returns an error if:
//   - a module is nil or a reflect.Type (ModuleMustBeInstanceError)
//   - a factory has an unsupported signature (InvalidSignatureError)
//   - two factories produce the same Key (DuplicateBindingError)
//   - a factory depends directly on its own Key (CircularDependencyError)
//
// Example:
//
//	container, err := ceangal.New(
//	    ceangal.WithModules(&StorageModule{}, &HTTPModule{}),
//	    ceangal.WithLogger(logger),
//	)
func New(options ...Option) (*Container, error) {
	c := &Container{
		providers:  registry.New[Key, *binding](),
		singletons: newSingletonCache(),
		fields:     newFieldCache(),
		metadata:   ReflectSource{},
		invoker:    ReflectInvoker{},
		log:        logger(),
	}

	// Apply options
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	// The container resolves itself
	self := KeyOf[*Container]()
	_ = c.providers.Register(self, &binding{
		key:     self,
		source:  "container",
		produce: func(chain) (any, error) { return c, nil },
	})

	for _, module := range c.modules {
		if err := c.registerModule(module); err != nil {
			return nil, err
		}
	}

	c.log.Debug().
		Int("modules", len(c.modules)).
		Int("bindings", c.providers.Len()).
		Msg("container ready")
	return c, nil
}

// With creates a container from modules.
func With(modules ...any) (*Container, error) {
	return New(WithModules(modules...))
}

func (c *Container) registerModule(module any) error {
	if module == nil {
		return &InvalidModuleError{Reason: "module cannot be nil"}
	}
	if t, ok := module.(reflect.Type); ok {
		return &ModuleMustBeInstanceError{Type: t}
	}

	factories, err := c.metadata.Factories(module)
	if err != nil {
		return err
	}
	for _, f := range factories {
		if err := c.registerFactory(module, f); err != nil {
			return err
		}
	}
	return nil
}

// Instance resolves key and returns a fully constructed value.
// It is equivalent to calling Get on the result of Provider.
func (c *Container) Instance(key Key) (any, error) {
	p, err := c.Provider(key)
	if err != nil {
		return nil, err
	}
	return p.Get()
}

// Provider resolves key and returns a reusable handle without constructing a
// value. Resolution problems of key itself, such as a missing constructor,
// are reported here; problems deeper in the graph surface on Get.
func (c *Container) Provider(key Key) (Provider[any], error) {
	return c.provider(key)
}

// Has reports whether a binding exists for key, either from a module factory
// or from earlier auto-wiring.
func (c *Container) Has(key Key) bool {
	return c.providers.Has(key)
}

// Keys returns the keys of all bindings in registration order.
func (c *Container) Keys() []Key {
	return c.providers.Keys()
}

// Instance resolves the key of T and the optional qualifier.
//
// Example:
//
//	store, err := ceangal.Instance[Store](container, "primary")
func Instance[T any](c *Container, qualifier ...any) (T, error) {
	p, err := ProviderOf[T](c, qualifier...)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.Get()
}

// MustInstance resolves the key of T or panics.
// Use this only during application startup where errors are fatal.
func MustInstance[T any](c *Container, qualifier ...any) T {
	v, err := Instance[T](c, qualifier...)
	if err != nil {
		panic(err)
	}
	return v
}

// ProviderOf returns a typed provider for the key of T and the optional
// qualifier.
func ProviderOf[T any](c *Container, qualifier ...any) (Provider[T], error) {
	key := KeyOf[T](qualifier...)
	p, err := c.provider(key)
	if err != nil {
		return Provider[T]{}, err
	}
	return Provider[T]{key: key, get: p.get}, nil
}
