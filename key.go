package ceangal

import (
	"fmt"
	"reflect"

	"github.com/samber/mo"
)

// Key identifies a binding: a type plus an optional qualifier.
// Two keys are equal when both their types and qualifiers are equal, so a Key
// can be used directly as a map key. An unqualified key never matches a
// qualified one.
//
// Example:
//
//	ceangal.KeyOf[Logger]()          // unqualified
//	ceangal.KeyOf[Logger]("audit")   // qualified by the string "audit"
type Key struct {
	typ       reflect.Type
	qualifier mo.Option[any]
}

// KeyOf returns the key for type T. Only the first qualifier is used; a nil
// qualifier is the same as none.
func KeyOf[T any](qualifier ...any) Key {
	return KeyFor(reflect.TypeFor[T](), qualifier...)
}

// KeyFor returns the key for t. Qualifiers must be comparable values.
func KeyFor(t reflect.Type, qualifier ...any) Key {
	k := Key{typ: t, qualifier: mo.None[any]()}
	if len(qualifier) == 0 || qualifier[0] == nil {
		return k
	}

	q := qualifier[0]
	if !reflect.TypeOf(q).Comparable() {
		panic(fmt.Sprintf("qualifier %#v for type %v is not comparable", q, t))
	}
	k.qualifier = mo.Some(q)
	return k
}

// Type returns the requested type.
func (k Key) Type() reflect.Type {
	return k.typ
}

// Qualifier returns the qualifier value and whether the key has one.
func (k Key) Qualifier() (any, bool) {
	return k.qualifier.Get()
}

// IsQualified reports whether the key carries a qualifier.
func (k Key) IsQualified() bool {
	return k.qualifier.IsPresent()
}

// String renders the key for diagnostics, e.g. "ceangal.Logger (qualifier=audit)".
func (k Key) String() string {
	if k.typ == nil {
		return "<nil>"
	}
	if q, ok := k.qualifier.Get(); ok {
		return fmt.Sprintf("%v (qualifier=%v)", k.typ, q)
	}
	return k.typ.String()
}
