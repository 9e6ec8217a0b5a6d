package ceangal

import (
	"fmt"
	"reflect"
)

// Provider is a lazy, reusable handle producing values for one Key.
// Each Get resolves the binding again: singleton-scoped bindings return the
// cached value, others construct a fresh one.
//
// Declaring a factory parameter, Inject constructor parameter or injected
// field as Provider[T] defers its resolution, which also breaks dependency
// cycles.
//
// Example:
//
//	type Scheduler struct {
//	    jobs ceangal.Provider[*Job] `inject:""`
//	}
//
//	job, err := s.jobs.Get()
type Provider[T any] struct {
	key Key
	get func() (any, error)
}

// Key returns the key the provider resolves.
func (p Provider[T]) Key() Key {
	return p.key
}

// Get produces a value.
func (p Provider[T]) Get() (T, error) {
	var zero T
	if p.get == nil {
		return zero, ErrUnboundProvider
	}

	v, err := p.get()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("ceangal: %s produced %T, which is not a %v", p.key, v, reflect.TypeFor[T]())
	}
	return typed, nil
}

// MustGet produces a value or panics.
// Use this only during application startup where errors are fatal.
func (p Provider[T]) MustGet() T {
	v, err := p.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// lazyHandle is implemented by every instantiation of Provider. It lets the
// reflective metadata source recognise provider-typed parameters and fields
// without knowing T statically.
type lazyHandle interface {
	providedType() reflect.Type
	rebind(key Key, get func() (any, error)) any
}

func (Provider[T]) providedType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (Provider[T]) rebind(key Key, get func() (any, error)) any {
	return Provider[T]{key: key, get: get}
}

// lazyHandleOf returns the handle for t when t is exactly a Provider type.
// Structs that merely embed a Provider are not handles.
func lazyHandleOf(t reflect.Type) (lazyHandle, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	h, ok := reflect.Zero(t).Interface().(lazyHandle)
	if !ok || reflect.TypeOf(h.rebind(Key{}, nil)) != t {
		return nil, false
	}
	return h, true
}
