// Package dobridge exposes ceangal bindings to a samber/do injector.
//
// Bridged services are registered as transient do services. Every invocation
// goes back to the ceangal container, so singleton-scoped bindings stay
// singletons and transient ones stay fresh.
package dobridge

import (
	"fmt"

	"github.com/samber/do/v2"

	ceangal "github.com/toutaio/toutago-ceangal-injector"
)

// Provide registers the binding for T and the optional qualifier with
// injector. Unqualified keys are registered under T's service name, qualified
// keys under the qualifier rendered as a string.
//
// The binding is resolved before registration, so a missing constructor is
// reported here rather than on the first do.Invoke.
//
// Example:
//
//	injector := do.New()
//	if err := dobridge.Provide[*Store](injector, container, "primary"); err != nil {
//	    return err
//	}
//	store, err := do.InvokeNamed[*Store](injector, "primary")
func Provide[T any](injector do.Injector, c *ceangal.Container, qualifier ...any) error {
	p, err := ceangal.ProviderOf[T](c, qualifier...)
	if err != nil {
		return fmt.Errorf("failed to bridge %s: %w", ceangal.KeyOf[T](qualifier...), err)
	}

	provider := func(do.Injector) (T, error) {
		return p.Get()
	}

	if q, ok := p.Key().Qualifier(); ok {
		do.ProvideNamedTransient(injector, fmt.Sprint(q), provider)
		return nil
	}
	do.ProvideTransient(injector, provider)
	return nil
}

// ProvideAll registers every key with injector as an untyped named service.
// Resolve them with do.InvokeNamed[any] and the name returned by ServiceName.
func ProvideAll(injector do.Injector, c *ceangal.Container, keys ...ceangal.Key) error {
	for _, key := range keys {
		p, err := c.Provider(key)
		if err != nil {
			return fmt.Errorf("failed to bridge %s: %w", key, err)
		}
		do.ProvideNamedTransient(injector, ServiceName(key), func(do.Injector) (any, error) {
			return p.Get()
		})
	}
	return nil
}

// ServiceName returns the do service name ProvideAll registers key under,
// e.g. "*app.Store (qualifier=primary)".
func ServiceName(key ceangal.Key) string {
	return "ceangal:" + key.String()
}
