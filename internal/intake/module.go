// Package intake provides the listing intake bounded context module.
// This file defines the module that encapsulates all intake setup and route
// registration.
package intake

import (
	"context"
	"time"

	"resale_support_backend/internal/events"
	apphttp "resale_support_backend/internal/http"
	"resale_support_backend/internal/intake/ports"
	"resale_support_backend/internal/intake/service"
	"resale_support_backend/internal/intake/session"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

// ModuleConfig combines the config interfaces the intake module needs.
type ModuleConfig interface {
	config.LineConfig
	config.SessionConfig
}

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	service  *service.Service
	sessions *session.Store
	log      *logger.Logger
}

// NewModule creates and initializes the intake module with all its
// dependencies. covers may be nil when image hosting is not configured.
func NewModule(
	cfg ModuleConfig,
	messenger ports.Messenger,
	images ports.ImageFetcher,
	vision ports.Vision,
	generator ports.Generator,
	ledger ports.Ledger,
	covers ports.CoverStore,
	bus events.Bus,
	log *logger.Logger,
) *Module {
	sessions := session.NewStore(cfg.GetSessionTimeout())
	svc := service.New(sessions, messenger, images, vision, generator, ledger, covers, bus, log)
	handler := NewHandler(svc, cfg.GetLineChannelSecret(), log)

	return &Module{
		handler:  handler,
		service:  svc,
		sessions: sessions,
		log:      log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// RegisterRoutes mounts the webhook endpoint. It lives at the engine root,
// not under /api, because the path is registered with the LINE console.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.POST("/callback", m.handler.HandleWebhook)
}

// Service exposes the state machine for other modules and tooling.
func (m *Module) Service() *service.Service {
	return m.service
}

// StartSessionCleanup evicts expired sessions on the given interval until
// the context is canceled. Expiry itself is lazy; this only bounds memory.
func (m *Module) StartSessionCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := m.sessions.CleanupExpired(); removed > 0 {
					m.log.Info("expired sessions evicted", "count", removed)
				}
			}
		}
	}()
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
