// Package di provides dependency injection configuration for the Reading KG server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/readingkg/readingkg-server/internal/config"
	"github.com/readingkg/readingkg-server/internal/di/providers"
	"github.com/readingkg/readingkg-server/internal/logger"
	"github.com/readingkg/readingkg-server/internal/search"
	"github.com/readingkg/readingkg-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Lookup and search layer
	do.Provide(injector, providers.ProvideSources)
	do.Provide(injector, providers.ProvideSearchOrchestrator)

	// Business services
	do.Provide(injector, providers.ProvideEventService)
	do.Provide(injector, providers.ProvideBookService)

	// Workers
	do.Provide(injector, providers.ProvideSyncEngine)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.Sources](injector)
	_ = do.MustInvoke[*search.Orchestrator](injector)

	// Business services
	_ = do.MustInvoke[*service.EventService](injector)
	_ = do.MustInvoke[*service.BookService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SyncEngineHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
