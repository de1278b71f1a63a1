package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pagemarkapp/pagemark-server/internal/config"
	"github.com/pagemarkapp/pagemark-server/internal/logger"
	"github.com/pagemarkapp/pagemark-server/internal/service"
	"github.com/pagemarkapp/pagemark-server/internal/watcher"
)

// Projection owns the catalog projector and its change watcher. Invoking it
// runs the initial projection, so the HTTP server provider depends on it to
// guarantee the book table is populated before traffic is accepted.
type Projection struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (p *Projection) Shutdown() error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.watcher != nil {
		return p.watcher.Stop()
	}
	return nil
}

// ProvideProjection provides the projection lifecycle.
func ProvideProjection(i do.Injector) (*Projection, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	if catalogHandle.Catalog == nil {
		return &Projection{}, nil
	}

	projector := service.NewProjectorService(catalogHandle.Catalog, storeHandle.Store, log.Logger)

	if _, err := projector.Project(context.Background()); err != nil {
		return nil, err
	}

	p := &Projection{}

	if cfg.Catalog.Watch {
		ctx, cancel := context.WithCancel(context.Background())

		w, err := watcher.New(cfg.Catalog.Path, watcher.DefaultDebounce, func(ctx context.Context) {
			if _, err := projector.Project(ctx); err != nil {
				log.Error("Catalog reprojection failed", "error", err)
			}
		}, log.Logger)
		if err != nil {
			cancel()
			return nil, err
		}

		w.Start(ctx)
		p.watcher = w
		p.cancel = cancel

		log.Info("Catalog watcher started", "path", cfg.Catalog.Path)
	}

	return p, nil
}
