// Package main provides the entry point for the PageMark server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/pagemarkapp/pagemark-server/internal/di"
	"github.com/pagemarkapp/pagemark-server/internal/di/providers"
	"github.com/pagemarkapp/pagemark-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts providers down in reverse dependency order:
	// listener first, then the watcher, then the stores.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Wrapper handles are closed explicitly in case the container skipped them.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close sync store", "error", err)
		}
	}
	if catalogHandle, err := do.Invoke[*providers.CatalogHandle](injector); err == nil {
		if err := catalogHandle.Shutdown(); err != nil {
			log.Error("Failed to close catalog", "error", err)
		}
	}

	log.Info("Goodbye")
}
