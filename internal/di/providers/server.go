package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pagemarkapp/pagemark-server/internal/api"
	"github.com/pagemarkapp/pagemark-server/internal/config"
	"github.com/pagemarkapp/pagemark-server/internal/logger"
	"github.com/pagemarkapp/pagemark-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	// The initial projection must finish before the listener opens.
	_ = do.MustInvoke[*Projection](i)

	authService := do.MustInvoke[*service.AuthService](i)
	syncService := do.MustInvoke[*service.SyncService](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	handler := api.NewServer(authService, syncService, limiterHandle.KeyedRateLimiter, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
