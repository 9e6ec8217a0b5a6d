// Package ceangal provides a dependency injection container for Go.
//
// Ceangal (Irish: "Binding") builds an application's object graph on demand.
// Modules declare how to produce values, types declare how to construct
// themselves, and the container wires constructor and field dependencies
// automatically.
//
// # Features
//
//   - Modules: any struct whose exported Provide methods are factories
//   - Auto-wiring through Inject constructors or the zero value
//   - Qualified bindings of the same type
//   - Lazy providers that defer resolution and break cycles
//   - Singleton scope with at-most-once construction
//   - Field injection into objects built elsewhere
//   - Circular dependency detection with the full chain in the error
//   - Thread-safe resolution
//
// # Quick Start
//
// Declare a module and create a container:
//
//	type AppModule struct{}
//
//	func (AppModule) ProvideGreeting() string {
//	    return "Hello!"
//	}
//
//	container, err := ceangal.With(AppModule{})
//	greeting, err := ceangal.Instance[string](container)
//
// # Qualifiers
//
// A module implementing Annotator qualifies its factories by method name:
//
//	func (m *StoreModule) Annotations() map[string]ceangal.Annotation {
//	    return map[string]ceangal.Annotation{
//	        "ProvidePrimary": {Qualifier: "primary"},
//	        "ProvideReplica": {Qualifier: "replica"},
//	    }
//	}
//
//	primary, err := ceangal.Instance[Store](container, "primary")
//
// Parameters request qualified keys through a parameter struct embedding In:
//
//	type reportDeps struct {
//	    ceangal.In
//	    Store Store `inject:"name=replica"`
//	}
//
// # Auto-Wiring
//
// A struct type without a factory is built through its Inject method, called
// on a fresh value, or through its zero value when it has none:
//
//	type UserService struct {
//	    store Store
//	}
//
//	func (s *UserService) Inject(store Store) {
//	    s.store = store
//	}
//
//	service, err := ceangal.Instance[*UserService](container)
//
// # Singletons
//
// Embed Singleton in a type, or set Annotation.Singleton on a factory:
//
//	type Database struct {
//	    ceangal.Singleton
//	}
//
// # Providers
//
// A parameter or field typed Provider[T] receives a lazy handle instead of a
// value. Dependencies taken through providers never form a cycle.
//
//	func (s *Scheduler) Inject(jobs ceangal.Provider[*Job]) { ... }
//
// A singleton must not call Get on a provider of its own key from its
// constructor; its construction is still in progress and the call blocks.
//
// # Field Injection
//
//	type Handler struct {
//	    store Store `inject:"name=primary"`
//	}
//
//	err := container.InjectFields(&handler)
//
// # Error Handling
//
// All failures are returned as typed errors, for use with errors.As:
// ModuleMustBeInstanceError, DuplicateBindingError, NoConstructorError,
// AmbiguousConstructorError, CircularDependencyError, ConstructionError and
// FieldInjectionError.
//
// # Thread Safety
//
// All operations are thread-safe and can be used concurrently.
package ceangal
