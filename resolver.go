package ceangal

import (
	"errors"
	"reflect"

	"github.com/samber/lo"

	"github.com/toutaio/toutago-ceangal-injector/registry"
)

// binding is the stored recipe for one Key.
type binding struct {
	key       Key
	singleton bool

	// source names the factory or constructor, for diagnostics.
	source string

	// produce builds a value. inner is the resolution chain including key.
	produce func(inner chain) (any, error)
}

// chain is the ordered list of keys being resolved by one top-level request.
// It is copied on append, so each branch of the graph owns its own chain.
type chain []Key

func (ch chain) contains(k Key) bool {
	return lo.Contains([]Key(ch), k)
}

func (ch chain) append(k Key) chain {
	next := make(chain, len(ch), len(ch)+1)
	copy(next, ch)
	return append(next, k)
}

// checkCycles fails if a direct dependency is already in the chain.
// Lazy dependencies never close a cycle.
func checkCycles(ch chain, params []Dependency) error {
	for _, p := range params {
		if !p.Lazy && ch.contains(p.Key) {
			return &CircularDependencyError{Chain: ch, Key: p.Key}
		}
	}
	return nil
}

// value resolves key and produces a value for it. ch holds the keys already
// in progress; re-entering one of them is a cycle even when the binding was
// registered earlier.
func (c *Container) value(key Key, ch chain) (any, error) {
	if ch.contains(key) {
		return nil, &CircularDependencyError{Chain: ch, Key: key}
	}

	b, err := c.resolve(key, ch)
	if err != nil {
		return nil, err
	}
	return c.get(b, ch.append(key))
}

// resolve returns the binding for key, auto-wiring the key's type through its
// constructor when no binding exists yet. Module factories are registered up
// front, so they always take precedence over auto-wiring.
func (c *Container) resolve(key Key, ch chain) (*binding, error) {
	if key.typ == nil {
		return nil, ErrInvalidKey
	}
	if b, ok := c.providers.Get(key).Get(); ok {
		return b, nil
	}
	return c.providers.GetOrCreate(key, func() (*binding, error) {
		return c.autowire(key, ch)
	})
}

// autowire builds a binding from the constructor of key's type.
func (c *Container) autowire(key Key, ch chain) (*binding, error) {
	ctor, err := c.constructor(key)
	if err != nil {
		return nil, err
	}

	if err := checkCycles(ch.append(key), ctor.Params); err != nil {
		return nil, err
	}

	b := &binding{
		key:       key,
		singleton: c.metadata.Singleton(key.typ),
		source:    ctor.Name,
		produce:   c.producer(key, ctor.Name, ctor.Params, ctor.Target),
	}

	c.log.Debug().
		Str("key", key.String()).
		Str("constructor", ctor.Name).
		Bool("singleton", b.singleton).
		Msg("auto-wired binding")
	return b, nil
}

// constructor selects the constructor used to auto-wire key: the single
// Inject constructor if there is one, else the zero-parameter constructor.
func (c *Container) constructor(key Key) (Constructor, error) {
	ctors, err := c.metadata.Constructors(key.typ)
	if err != nil {
		return Constructor{}, err
	}

	inject := lo.Filter(ctors, func(ctor Constructor, _ int) bool { return ctor.Inject })
	switch len(inject) {
	case 0:
	case 1:
		return inject[0], nil
	default:
		return Constructor{}, &AmbiguousConstructorError{
			Type:         key.typ,
			Constructors: lo.Map(inject, func(ctor Constructor, _ int) string { return ctor.Name }),
		}
	}

	noarg, ok := lo.Find(ctors, func(ctor Constructor) bool { return len(ctor.Params) == 0 })
	if !ok {
		return Constructor{}, &NoConstructorError{Key: key}
	}
	return noarg, nil
}

// registerFactory registers a module factory. Its own key seeds the chain so
// that a factory cannot depend directly on its own output.
func (c *Container) registerFactory(module any, f Factory) error {
	if err := checkCycles(chain{f.Key}, f.Params); err != nil {
		return err
	}

	b := &binding{
		key:       f.Key,
		singleton: f.Singleton,
		source:    f.Name,
		produce:   c.producer(f.Key, f.Name, f.Params, f.Target),
	}

	if err := c.providers.Register(f.Key, b); err != nil {
		var exists *registry.AlreadyRegisteredError
		if errors.As(err, &exists) {
			return &DuplicateBindingError{Key: f.Key, Module: reflect.TypeOf(module)}
		}
		return err
	}

	c.log.Debug().
		Str("key", f.Key.String()).
		Str("factory", f.Name).
		Bool("singleton", f.Singleton).
		Msg("registered factory")
	return nil
}

// producer returns the function building key's value: it resolves params,
// then invokes target.
func (c *Container) producer(key Key, source string, params []Dependency, target any) func(chain) (any, error) {
	return func(inner chain) (any, error) {
		args, err := c.arguments(params, inner)
		if err != nil {
			return nil, err
		}

		v, err := c.invoker.Call(target, args)
		if err != nil {
			c.log.Warn().Err(err).Str("key", key.String()).Str("source", source).Msg("construction failed")
			return nil, &ConstructionError{Key: key, Source: source, Cause: err}
		}
		return v, nil
	}
}

// arguments resolves params in order. Direct dependencies are constructed
// now; lazy ones are resolved to a binding but handed over as providers.
func (c *Container) arguments(params []Dependency, inner chain) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		if p.Lazy {
			handle, err := c.provider(p.Key)
			if err != nil {
				return nil, err
			}
			args[i] = handle
			continue
		}

		v, err := c.value(p.Key, inner)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// get produces a value from b, going through the singleton cache when b is
// singleton-scoped.
func (c *Container) get(b *binding, inner chain) (any, error) {
	if !b.singleton {
		return b.produce(inner)
	}

	v, created, err := c.singletons.getOrCreate(b.key, func() (any, error) {
		return b.produce(inner)
	})
	if created {
		c.log.Debug().Str("key", b.key.String()).Str("source", b.source).Msg("constructed singleton")
	}
	return v, err
}

// provider resolves key and returns a handle that starts a fresh chain on
// every Get.
func (c *Container) provider(key Key) (Provider[any], error) {
	if _, err := c.resolve(key, nil); err != nil {
		return Provider[any]{}, err
	}
	return Provider[any]{
		key: key,
		get: func() (any, error) { return c.value(key, nil) },
	}, nil
}
