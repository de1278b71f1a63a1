package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/pagemarkapp/pagemark-server/internal/catalog"
	"github.com/pagemarkapp/pagemark-server/internal/config"
	"github.com/pagemarkapp/pagemark-server/internal/logger"
	"github.com/pagemarkapp/pagemark-server/internal/store/sqlite"
)

// StoreHandle wraps the sync store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sync store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Data.BasePath, "pagemark.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Sync store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CatalogHandle wraps the read-only catalog. Catalog is nil when no catalog
// path is configured; the server then runs as a pure progress sync service.
type CatalogHandle struct {
	Catalog *catalog.SQLiteCatalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	if h.Catalog == nil {
		return nil
	}
	return h.Catalog.Close()
}

// ProvideCatalog provides the external catalog reader.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.Path == "" {
		log.Info("No catalog configured, book projection disabled")
		return &CatalogHandle{}, nil
	}

	cat, err := catalog.Open(cfg.Catalog.Path, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	log.Info("Catalog opened", "path", cfg.Catalog.Path)

	return &CatalogHandle{Catalog: cat}, nil
}
