// Package reports provides the daily work report domain module.
package reports

import (
	"genba_backend/internal/events"
	apphttp "genba_backend/internal/http"
	ratesvc "genba_backend/internal/rates/service"
	"genba_backend/internal/reports/handler"
	"genba_backend/internal/reports/repository"
	"genba_backend/internal/reports/service"
	"genba_backend/platform/logger"
	"genba_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the daily reports domain module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates a new reports module with all dependencies wired.
// Rate resolution is delegated to the rates module's service.
func NewModule(pool *pgxpool.Pool, rates *ratesvc.Service, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, rates, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repository: repo}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "reports"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for use by other modules that need
// aggregate labor totals.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/reports"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
