package di

import (
	"github.com/genesisproject/genesis/pkg/store"
	"github.com/genesisproject/genesis/pkg/timer"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root
// command and tests. It registers default implementations for the timer and
// the store client factory.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideStoreClientFactory,
	)
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideStoreClientFactory registers the store client factory dependency.
func provideStoreClientFactory(i Injector) error {
	do.Provide(i, func(Injector) (store.ClientFactory, error) {
		return store.DefaultClientFactory{}, nil
	})

	return nil
}
