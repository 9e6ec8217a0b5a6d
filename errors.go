package ceangal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/samber/lo"
)

// Sentinel errors. Use errors.Is to check for them.
var (
	// ErrUnboundProvider is returned by Get on a zero Provider.
	ErrUnboundProvider = errors.New("ceangal: provider is not bound to a container")

	// ErrInvalidTarget is the cause of a FieldInjectionError when the target
	// is not a non-nil pointer to a struct.
	ErrInvalidTarget = errors.New("ceangal: injection target must be a non-nil pointer to struct")

	// ErrInvalidKey is returned when a key has no type.
	ErrInvalidKey = errors.New("ceangal: key has no type")
)

// ModuleMustBeInstanceError is returned when a module is passed as a type
// descriptor instead of an instance.
type ModuleMustBeInstanceError struct {
	Type reflect.Type
}

func (e *ModuleMustBeInstanceError) Error() string {
	return fmt.Sprintf("%v provided as a type instead of an instance", e.Type)
}

// InvalidModuleError is returned when a module cannot be used at all.
type InvalidModuleError struct {
	Reason string
}

func (e *InvalidModuleError) Error() string {
	return fmt.Sprintf("invalid module: %s", e.Reason)
}

// InvalidSignatureError is returned when a factory method or Inject
// constructor has a signature the container cannot call.
type InvalidSignatureError struct {
	Type   reflect.Type
	Method string
	Reason string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature for %v.%s: %s", e.Type, e.Method, e.Reason)
}

// DuplicateBindingError is returned when two factories produce the same Key.
type DuplicateBindingError struct {
	Key    Key
	Module reflect.Type
}

func (e *DuplicateBindingError) Error() string {
	if e.Module == nil {
		return fmt.Sprintf("%s has multiple providers", e.Key)
	}
	return fmt.Sprintf("%s has multiple providers, module %v", e.Key, e.Module)
}

// NoConstructorError is returned when a type has no Inject constructor, no
// zero-value constructor and no module factory.
type NoConstructorError struct {
	Key Key
}

func (e *NoConstructorError) Error() string {
	return fmt.Sprintf("%s doesn't have an Inject or zero-value constructor, or a module provider", e.Key)
}

// AmbiguousConstructorError is returned when a type declares more than one
// Inject constructor.
type AmbiguousConstructorError struct {
	Type         reflect.Type
	Constructors []string
}

func (e *AmbiguousConstructorError) Error() string {
	return fmt.Sprintf("%v has multiple Inject constructors: %s", e.Type, strings.Join(e.Constructors, ", "))
}

// CircularDependencyError indicates a key re-entered its own resolution
// through direct-value dependencies. Chain holds the keys being resolved, in
// order; Key is the dependency that closed the cycle.
type CircularDependencyError struct {
	Chain []Key
	Key   Key
}

// Path returns the rendered chain, ending with the offending key.
func (e *CircularDependencyError) Path() []string {
	path := lo.Map(e.Chain, func(k Key, _ int) string { return k.String() })
	return append(path, e.Key.String())
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Path(), " -> "))
}

// ConstructionError wraps a failure of the constructor or factory itself.
type ConstructionError struct {
	Key    Key
	Source string
	Cause  error
}

func (e *ConstructionError) Error() string {
	source := ""
	if e.Source != "" {
		source = fmt.Sprintf(" with %s", e.Source)
	}
	return fmt.Sprintf("can't instantiate %s%s: %v", e.Key, source, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// FieldInjectionError wraps any failure to inject a field of a target.
type FieldInjectionError struct {
	Type  reflect.Type
	Field string
	Cause error
}

func (e *FieldInjectionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("can't inject fields in %v: %v", e.Type, e.Cause)
	}
	return fmt.Sprintf("can't inject field %s in %v: %v", e.Field, e.Type, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *FieldInjectionError) Unwrap() error {
	return e.Cause
}
