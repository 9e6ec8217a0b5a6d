package ceangal

import (
	"errors"

	"github.com/rs/zerolog"
)

// Option is a function that configures a Container.
type Option func(*Container) error

// WithModule adds one module. Modules are registered in the order given.
func WithModule(module any) Option {
	return func(c *Container) error {
		c.modules = append(c.modules, module)
		return nil
	}
}

// WithModules adds several modules.
func WithModules(modules ...any) Option {
	return func(c *Container) error {
		c.modules = append(c.modules, modules...)
		return nil
	}
}

// WithLogger sets the container's logger, overriding the package-level
// Logger. The logger is tagged with component: ceangal.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Container) error {
		c.log = tagged(l)
		return nil
	}
}

// WithMetadataSource replaces the reflective metadata source.
func WithMetadataSource(source MetadataSource) Option {
	return func(c *Container) error {
		if source == nil {
			return errors.New("metadata source cannot be nil")
		}
		c.metadata = source
		return nil
	}
}

// WithInvoker replaces the reflective invoker. Use it together with
// WithMetadataSource when the source produces its own invocation targets.
func WithInvoker(invoker Invoker) Option {
	return func(c *Container) error {
		if invoker == nil {
			return errors.New("invoker cannot be nil")
		}
		c.invoker = invoker
		return nil
	}
}
