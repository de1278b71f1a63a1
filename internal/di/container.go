// Package di provides dependency injection configuration for the PageMark server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pagemarkapp/pagemark-server/internal/config"
	"github.com/pagemarkapp/pagemark-server/internal/di/providers"
	"github.com/pagemarkapp/pagemark-server/internal/logger"
	"github.com/pagemarkapp/pagemark-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCatalog)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Projection lifecycle
	do.Provide(injector, providers.ProvideProjection)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	invocations := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.CatalogHandle](injector); return err },
		func() error { _, err := do.Invoke[*service.AuthService](injector); return err },
		func() error { _, err := do.Invoke[*service.SyncService](injector); return err },
		func() error { _, err := do.Invoke[*providers.RateLimiterHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.Projection](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
	}

	for _, invoke := range invocations {
		if err := invoke(); err != nil {
			return err
		}
	}

	return nil
}
