package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagemarkapp/pagemark-server/internal/config"
	"github.com/pagemarkapp/pagemark-server/internal/logger"
	"github.com/pagemarkapp/pagemark-server/internal/ratelimit"
	"github.com/pagemarkapp/pagemark-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, cfg.Auth.AllowRegistration, log.Logger), nil
}

// ProvideSyncService provides the progress sync service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(storeHandle.Store, log.Logger), nil
}

// RateLimiterHandle wraps the keyed rate limiter with Shutdownable.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client auth throttle.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst),
	}, nil
}
