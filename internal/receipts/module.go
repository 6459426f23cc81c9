// Package receipts provides the receipt capture domain module.
package receipts

import (
	"genba_backend/internal/events"
	apphttp "genba_backend/internal/http"
	"genba_backend/internal/receipts/handler"
	"genba_backend/internal/receipts/repository"
	"genba_backend/internal/receipts/service"
	"genba_backend/platform/logger"
	"genba_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the receipts domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new receipts module with all dependencies wired.
// objStorage and enqueuer may be nil when storage or Redis is not configured.
func NewModule(pool *pgxpool.Pool, objStorage service.ObjectStorage, enqueuer service.OCREnqueuer, bucket string, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, objStorage, enqueuer, bucket, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "receipts"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/receipts"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
