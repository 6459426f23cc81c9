// Package estimates provides the estimate domain module.
package estimates

import (
	billingsvc "genba_backend/internal/billing/service"
	"genba_backend/internal/estimates/handler"
	"genba_backend/internal/estimates/repository"
	"genba_backend/internal/estimates/service"
	"genba_backend/internal/events"
	apphttp "genba_backend/internal/http"
	"genba_backend/platform/logger"
	"genba_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the estimates domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new estimates module with all dependencies wired.
// generator may be nil when AI is disabled.
func NewModule(pool *pgxpool.Pool, billing *billingsvc.Service, generator service.TextGenerator, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, billing, generator, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "estimates"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/estimates"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
