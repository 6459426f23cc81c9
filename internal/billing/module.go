// Package billing provides the per-site billing settings domain module.
package billing

import (
	"genba_backend/internal/billing/handler"
	"genba_backend/internal/billing/repository"
	"genba_backend/internal/billing/service"
	apphttp "genba_backend/internal/http"
	"genba_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the billing settings domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new billing module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "billing"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
