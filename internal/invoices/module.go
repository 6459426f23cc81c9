// Package invoices provides the invoice domain module.
package invoices

import (
	billingsvc "genba_backend/internal/billing/service"
	"genba_backend/internal/events"
	apphttp "genba_backend/internal/http"
	"genba_backend/internal/invoices/handler"
	"genba_backend/internal/invoices/repository"
	"genba_backend/internal/invoices/service"
	"genba_backend/platform/logger"
	"genba_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the invoices domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new invoices module with all dependencies wired.
// labor is the reports repository, which owns the labor entry aggregates.
func NewModule(pool *pgxpool.Pool, billing *billingsvc.Service, labor service.LaborSummer, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, billing, labor, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "invoices"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/invoices"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
