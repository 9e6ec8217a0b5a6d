package ceangal

import (
	"reflect"
)

// InjectFields injects the tagged fields of an existing struct, which is
// useful for objects the container did not create. Fields typed Provider[T]
// receive a provider; all others receive a resolved value.
//
// Every field is resolved before any is assigned, so a failing resolution
// leaves target unchanged.
//
// Example:
//
//	type Handler struct {
//	    store  Store                      `inject:"name=primary"`
//	    audits ceangal.Provider[*Audit]   `inject:""`
//	}
//
//	h := &Handler{}
//	if err := container.InjectFields(h); err != nil {
//	    return err
//	}
func (c *Container) InjectFields(target any) error {
	v := reflect.ValueOf(target)
	if target == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return &FieldInjectionError{Type: reflect.TypeOf(target), Cause: ErrInvalidTarget}
	}

	elem := v.Elem()
	typ := elem.Type()

	fields, err := c.fields.get(typ, c.metadata.Fields)
	if err != nil {
		return &FieldInjectionError{Type: typ, Cause: err}
	}

	values := make([]any, len(fields))
	for i, f := range fields {
		value, err := c.fieldValue(f)
		if err != nil {
			return &FieldInjectionError{Type: typ, Field: f.Name, Cause: err}
		}
		values[i] = value
	}

	for i, f := range fields {
		if err := c.invoker.SetField(elem, f, values[i]); err != nil {
			return &FieldInjectionError{Type: typ, Field: f.Name, Cause: err}
		}
	}

	c.log.Debug().Str("type", typ.String()).Int("fields", len(fields)).Msg("injected fields")
	return nil
}

func (c *Container) fieldValue(f Field) (any, error) {
	if f.Lazy {
		return c.provider(f.Key)
	}
	return c.value(f.Key, nil)
}
