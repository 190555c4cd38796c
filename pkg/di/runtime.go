// Package di provides the process-wide dependency context used in place of
// the module-level singletons (current store, default store, target list)
// that the original implementation relies on. A Runtime holds a set of base
// Modules; each Invoke creates a fresh, disposable injector scope so tests
// and successive commands never share mutable global state.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency container handed to providers and resolvers.
type Injector = do.Injector

// Module registers one or more dependencies on an Injector.
type Module func(Injector) error

// Runtime holds the base modules shared by every invocation.
type Runtime struct {
	modules []Module
}

// New constructs a Runtime from the given base modules. Nil modules are
// accepted and skipped at invocation time.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke builds a fresh injector scope, runs the runtime's base modules
// followed by any extraModules (in order), then calls handler with the
// populated injector. The injector is shut down before Invoke returns,
// regardless of outcome.
func (r *Runtime) Invoke(handler func(Injector) error, extraModules ...Module) error {
	injector := do.New()
	defer func() {
		_ = injector.Shutdown()
	}()

	for _, module := range r.modules {
		if module == nil {
			continue
		}

		if err := module(injector); err != nil {
			return err
		}
	}

	for _, module := range extraModules {
		if module == nil {
			continue
		}

		if err := module(injector); err != nil {
			return err
		}
	}

	return handler(injector)
}

// RunEWithRuntime adapts a cobra RunE handler to receive a populated
// Injector, wiring the runtime's modules before every command invocation.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, i Injector) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}
