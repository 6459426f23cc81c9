// Package chat provides the chat surface domain module: intent
// classification, tool dispatch and block rendering.
package chat

import (
	"genba_backend/internal/chat/dispatcher"
	"genba_backend/internal/chat/handler"
	"genba_backend/internal/chat/intent"
	"genba_backend/internal/chat/service"
	"genba_backend/internal/events"
	apphttp "genba_backend/internal/http"
	"genba_backend/platform/config"
	"genba_backend/platform/logger"
	"genba_backend/platform/validator"
)

// Module represents the chat domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new chat module with all dependencies wired. The
// intent dictionary is optionally extended from a YAML overlay file.
func NewModule(cfg config.ChatConfig, billing service.BillingPatcher, tracker service.Tracker, bus events.Bus, log *logger.Logger, val *validator.Validator) (*Module, error) {
	classifier := intent.New()
	if overlayPath := cfg.GetIntentOverlayPath(); overlayPath != "" {
		var err error
		classifier, err = intent.NewWithOverlayFile(overlayPath)
		if err != nil {
			return nil, err
		}
	}

	var invoker dispatcher.Invoker
	mockEnabled := cfg.IsToolMockEnabled()
	if !mockEnabled {
		invoker = dispatcher.NewFunctionInvoker(cfg.GetToolFunctionBaseURL())
	}
	disp := dispatcher.New(invoker, mockEnabled, bus, log)

	svc := service.New(classifier, disp, billing, tracker, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}, nil
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/chat"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
