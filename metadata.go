package ceangal

import "reflect"

// Dependency is one input of a factory, constructor or injected field.
type Dependency struct {
	Key Key

	// Lazy is set when the input is a Provider rather than a value.
	// Lazy dependencies are resolved on demand and break cycles.
	Lazy bool
}

// Factory describes a module method that produces values for Key.
type Factory struct {
	// Name is used in diagnostics, e.g. "*app.Module.ProvideStore".
	Name      string
	Key       Key
	Singleton bool
	Params    []Dependency

	// Target is handed back to the Invoker unchanged.
	Target any
}

// Constructor describes one way of building a type without a factory.
type Constructor struct {
	Name string

	// Inject is set for constructors explicitly marked for injection.
	Inject bool
	Params []Dependency
	Target any
}

// Field describes an injectable field of a struct type.
type Field struct {
	Name string

	// Index is the field's index path, as used by reflect.Value.FieldByIndex.
	Index []int
	Dependency
}

// MetadataSource tells the container which factories, constructors and
// fields exist. It is the only part of the container that knows how these are
// declared; the resolver never inspects types itself.
//
// ReflectSource is the default implementation.
type MetadataSource interface {
	// Factories lists the factory methods of a module instance.
	Factories(module any) ([]Factory, error)

	// Constructors lists the constructors of t. An empty list means t cannot
	// be built without a factory.
	Constructors(t reflect.Type) ([]Constructor, error)

	// Fields lists the injectable fields of the struct type t.
	Fields(t reflect.Type) ([]Field, error)

	// Singleton reports whether t itself is marked singleton-scoped.
	Singleton(t reflect.Type) bool
}

// Invoker performs the calls described by a MetadataSource.
//
// Arguments are passed in the order of the descriptor's Params. A lazy
// dependency is passed as a Provider[any]; the invoker converts it into
// whatever handle type the target expects.
//
// ReflectInvoker is the default implementation.
type Invoker interface {
	// Call invokes a Factory or Constructor target.
	Call(target any, args []any) (any, error)

	// SetField assigns value to field of the addressable struct target.
	SetField(target reflect.Value, field Field, value any) error
}
