package ceangal

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	// factoryPrefix marks module methods that produce bindings.
	factoryPrefix = "Provide"

	// injectPrefix marks methods of *T used as T's constructors.
	injectPrefix = "Inject"

	// tagName is the struct tag read on injected fields and In structs.
	tagName = "inject"
)

var (
	errorType     = reflect.TypeFor[error]()
	inType        = reflect.TypeFor[In]()
	singletonType = reflect.TypeFor[Singleton]()
)

// ReflectSource discovers metadata through reflection.
//
// Factories are the exported methods of a module whose names start with
// "Provide" and that return T or (T, error). A module implementing Annotator
// qualifies and scopes them by method name. Embedding a module and redefining
// one of its Provide methods overrides it.
//
// Constructors of a struct type S (requested as S or *S) are the zero value
// and every method of *S whose name starts with "Inject" and that returns
// nothing or an error. An Inject method is called on a freshly allocated S.
//
// Injectable fields are the fields tagged `inject`, including unexported ones
// and those promoted from embedded structs. Tag options:
//   - `inject:""` - unqualified
//   - `inject:"name=foo"` - qualified by the string "foo"
//   - `inject:"-"` - skipped (In structs only; untagged fields are not injected)
type ReflectSource struct{}

var _ MetadataSource = ReflectSource{}

// Factories lists the factory methods of module.
func (s ReflectSource) Factories(module any) ([]Factory, error) {
	v := reflect.ValueOf(module)
	t := v.Type()

	annotations := map[string]Annotation{}
	if a, ok := module.(Annotator); ok {
		annotations = a.Annotations()
	}

	factories := make([]Factory, 0, t.NumMethod())
	seen := make(map[string]bool, len(annotations))
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.HasPrefix(m.Name, factoryPrefix) {
			continue
		}
		seen[m.Name] = true

		sig, err := parseSignature(v.Method(i).Type(), false)
		if err != nil {
			return nil, &InvalidSignatureError{Type: t, Method: m.Name, Reason: err.Error()}
		}
		sig.fn = v.Method(i)

		annotation := annotations[m.Name]
		factories = append(factories, Factory{
			Name:      fmt.Sprintf("%v.%s", t, m.Name),
			Key:       KeyFor(sig.out, annotation.Qualifier),
			Singleton: annotation.Singleton || s.Singleton(sig.out),
			Params:    sig.dependencies(),
			Target:    sig,
		})
	}

	unknown := lo.Filter(lo.Keys(annotations), func(name string, _ int) bool { return !seen[name] })
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &InvalidModuleError{
			Reason: fmt.Sprintf("%v annotates unknown factory methods: %s", t, strings.Join(unknown, ", ")),
		}
	}

	return factories, nil
}

// Constructors lists the constructors of t.
func (ReflectSource) Constructors(t reflect.Type) ([]Constructor, error) {
	st, isPtr := structType(t)
	if st == nil {
		return nil, nil
	}

	ptr := reflect.PointerTo(st)
	constructors := make([]Constructor, 0, 1)
	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		if !strings.HasPrefix(m.Name, injectPrefix) {
			continue
		}

		sig, err := parseSignature(m.Type, true)
		if err != nil {
			return nil, &InvalidSignatureError{Type: ptr, Method: m.Name, Reason: err.Error()}
		}
		sig.fn = m.Func
		sig.receiver = st
		sig.value = !isPtr

		constructors = append(constructors, Constructor{
			Name:   fmt.Sprintf("%v.%s", ptr, m.Name),
			Inject: true,
			Params: sig.dependencies(),
			Target: sig,
		})
	}

	constructors = append(constructors, Constructor{
		Name:   fmt.Sprintf("%v{}", st),
		Target: &signature{receiver: st, value: !isPtr},
	})
	return constructors, nil
}

// Fields lists the injectable fields of the struct type t.
func (ReflectSource) Fields(t reflect.Type) ([]Field, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%v is not a struct", t)
	}

	var fields []Field
	for _, f := range reflect.VisibleFields(t) {
		tag, ok := f.Tag.Lookup(tagName)
		if !ok {
			continue
		}
		opts := parseInjectTag(tag)
		if opts.skip {
			continue
		}

		fields = append(fields, Field{
			Name:       f.Name,
			Index:      f.Index,
			Dependency: dependencyFor(f.Type, opts.qualifier()),
		})
	}
	return fields, nil
}

// Singleton reports whether t, or the struct t points to, embeds Singleton.
func (ReflectSource) Singleton(t reflect.Type) bool {
	st, _ := structType(t)
	if st == nil {
		return false
	}
	f, ok := st.FieldByName(singletonType.Name())
	return ok && f.Anonymous && f.Type == singletonType
}

// structType returns S for S and *S, and nil otherwise.
func structType(t reflect.Type) (st reflect.Type, isPtr bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t, isPtr = t.Elem(), true
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	return t, isPtr
}

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip bool   // Don't inject this field
	name string // Qualifier to use
}

func (o tagOptions) qualifier() any {
	if o.name == "" {
		return nil
	}
	return o.name
}

// parseInjectTag parses an inject struct tag and returns options.
// Supported formats:
//   - `inject:""` - basic injection
//   - `inject:"name=foo"` - qualified binding
//   - `inject:"-"` - skip
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if name, ok := strings.CutPrefix(part, "name="); ok {
			opts.name = name
		}
	}

	return opts
}

// dependencyFor builds the dependency for a parameter or field of type t.
func dependencyFor(t reflect.Type, qualifier any) Dependency {
	if h, ok := lazyHandleOf(t); ok {
		return Dependency{Key: KeyFor(h.providedType(), qualifier), Lazy: true}
	}
	return Dependency{Key: KeyFor(t, qualifier)}
}
