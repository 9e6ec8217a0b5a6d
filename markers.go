package ceangal

// Singleton marks a struct type as singleton-scoped when embedded in it.
// Every binding that produces the type, whether by auto-wiring or through a
// module factory, constructs the value at most once per container.
//
// Example:
//
//	type Database struct {
//	    ceangal.Singleton
//	    pool *sql.DB
//	}
type Singleton struct{}

// In marks a parameter struct. When a factory method or Inject constructor
// takes a struct embedding In, each of its fields is resolved as a separate
// dependency, which is how parameters carry qualifiers.
//
// Example:
//
//	type reportDeps struct {
//	    ceangal.In
//	    Primary Store `inject:"name=primary"`
//	    Replica Store `inject:"name=replica"`
//	}
//
//	func (m *Module) ProvideReport(d reportDeps) *Report { ... }
type In struct{}

// Annotation carries the metadata of a single factory method.
type Annotation struct {
	// Qualifier is the qualifier of the produced key. Nil means unqualified.
	Qualifier any

	// Singleton scopes the factory's result to the container.
	Singleton bool
}

// Annotator is implemented by modules that qualify or scope their factory
// methods. Annotations are keyed by method name.
//
// Example:
//
//	func (m *StoreModule) Annotations() map[string]ceangal.Annotation {
//	    return map[string]ceangal.Annotation{
//	        "ProvidePrimary": {Qualifier: "primary", Singleton: true},
//	        "ProvideReplica": {Qualifier: "replica"},
//	    }
//	}
type Annotator interface {
	Annotations() map[string]Annotation
}
