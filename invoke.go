package ceangal

import (
	"fmt"
	"reflect"
	"unsafe"
)

// signature holds everything needed to call a factory method or constructor.
//
// Supported shapes:
//   - factory methods: func(params...) T or func(params...) (T, error)
//   - Inject methods: func(*S, params...) or func(*S, params...) error
//   - zero-value constructors: fn is invalid and only receiver is set
type signature struct {
	fn           reflect.Value
	params       []param
	out          reflect.Type
	returnsError bool

	// receiver is the struct allocated for Inject and zero-value constructors.
	receiver reflect.Type

	// value makes the constructor return S instead of *S.
	value bool
}

// param is one function parameter. A parameter struct embedding In has
// fields; any other parameter has a single dependency.
type param struct {
	typ    reflect.Type
	dep    Dependency
	fields []inField
	in     bool
}

// inField is a resolved field of an In parameter struct.
type inField struct {
	index int
	dep   Dependency
}

// parseSignature analyzes a function type. For Inject methods the receiver is
// the first input and the function returns nothing or an error.
func parseSignature(fnType reflect.Type, method bool) (*signature, error) {
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("must be a function, got %v", fnType.Kind())
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported")
	}

	sig := &signature{}
	numOut := fnType.NumOut()

	if method {
		switch {
		case numOut == 1 && fnType.Out(0) == errorType:
			sig.returnsError = true
		case numOut != 0:
			return nil, fmt.Errorf("Inject methods must return nothing or error, got %d return values", numOut)
		}
	} else {
		// Validate return values
		if numOut == 0 || numOut > 2 {
			return nil, fmt.Errorf("must return (T) or (T, error), got %d return values", numOut)
		}
		if numOut == 2 {
			if fnType.Out(1) != errorType {
				return nil, fmt.Errorf("second return value must be error, got %v", fnType.Out(1))
			}
			sig.returnsError = true
		}
		sig.out = fnType.Out(0)
	}

	first := 0
	if method {
		first = 1
	}
	for i := first; i < fnType.NumIn(); i++ {
		sig.params = append(sig.params, parseParam(fnType.In(i)))
	}

	return sig, nil
}

func parseParam(t reflect.Type) param {
	if !isInStruct(t) {
		return param{typ: t, dep: dependencyFor(t, nil)}
	}

	p := param{typ: t, in: true}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == inType {
			continue
		}
		opts := parseInjectTag(f.Tag.Get(tagName))
		if opts.skip {
			continue
		}
		p.fields = append(p.fields, inField{index: i, dep: dependencyFor(f.Type, opts.qualifier())})
	}
	return p
}

// isInStruct reports whether t is a struct directly embedding In.
func isInStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Anonymous && f.Type == inType {
			return true
		}
	}
	return false
}

// dependencies flattens the parameters, expanding In structs field by field.
func (s *signature) dependencies() []Dependency {
	var deps []Dependency
	for _, p := range s.params {
		if !p.in {
			deps = append(deps, p.dep)
			continue
		}
		for _, f := range p.fields {
			deps = append(deps, f.dep)
		}
	}
	return deps
}

// call invokes the signature with flattened arguments.
func (s *signature) call(args []any) (any, error) {
	in, err := s.arguments(args)
	if err != nil {
		return nil, err
	}

	var recv reflect.Value
	if s.receiver != nil {
		recv = reflect.New(s.receiver)
		in = append([]reflect.Value{recv}, in...)
	}

	var results []reflect.Value
	if s.fn.IsValid() {
		results = s.fn.Call(in)
	}

	if s.returnsError {
		if errValue := results[len(results)-1]; !errValue.IsNil() {
			return nil, errValue.Interface().(error)
		}
	}

	switch {
	case s.receiver == nil:
		return results[0].Interface(), nil
	case s.value:
		return recv.Elem().Interface(), nil
	default:
		return recv.Interface(), nil
	}
}

// arguments rebuilds the call arguments from the flattened values.
func (s *signature) arguments(args []any) ([]reflect.Value, error) {
	if want := len(s.dependencies()); len(args) != want {
		return nil, fmt.Errorf("expected %d arguments, got %d", want, len(args))
	}

	in := make([]reflect.Value, 0, len(s.params))
	next := 0
	for _, p := range s.params {
		if !p.in {
			v, err := argumentValue(p.typ, args[next])
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", len(in), err)
			}
			next++
			in = append(in, v)
			continue
		}

		obj := reflect.New(p.typ).Elem()
		for _, f := range p.fields {
			field := obj.Field(f.index)
			v, err := argumentValue(field.Type(), args[next])
			if err != nil {
				return nil, fmt.Errorf("parameter %d field %s: %w", len(in), p.typ.Field(f.index).Name, err)
			}
			next++
			settable(field).Set(v)
		}
		in = append(in, obj)
	}
	return in, nil
}

// argumentValue converts a resolved value into a value of type t.
func argumentValue(t reflect.Type, arg any) (reflect.Value, error) {
	if handle, ok := arg.(Provider[any]); ok {
		h, ok := lazyHandleOf(t)
		if !ok {
			return reflect.Value{}, fmt.Errorf("got a provider for %v where %v is expected", handle.Key(), t)
		}
		return reflect.ValueOf(h.rebind(handle.key, handle.get)), nil
	}

	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("resolved type %v is not assignable to %v", v.Type(), t)
	}
	return v, nil
}

// settable returns a settable view of the addressable value v, including
// unexported struct fields.
func settable(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// ReflectInvoker calls targets produced by ReflectSource.
type ReflectInvoker struct{}

var _ Invoker = ReflectInvoker{}

// Call invokes a *signature target. Panics raised by the target are returned
// as errors.
func (ReflectInvoker) Call(target any, args []any) (result any, err error) {
	sig, ok := target.(*signature)
	if !ok {
		return nil, fmt.Errorf("unsupported invocation target %T", target)
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	return sig.call(args)
}

// SetField assigns value to the field, writing unexported fields in place.
func (ReflectInvoker) SetField(target reflect.Value, field Field, value any) error {
	fv, err := target.FieldByIndexErr(field.Index)
	if err != nil {
		return err
	}
	if !fv.CanAddr() {
		return fmt.Errorf("field %s is not addressable", field.Name)
	}

	v, err := argumentValue(fv.Type(), value)
	if err != nil {
		return err
	}

	settable(fv).Set(v)
	return nil
}
