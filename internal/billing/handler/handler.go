package handler

import (
	"net/http"

	"genba_backend/internal/billing/service"
	"genba_backend/internal/billing/transport"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSiteID    = "invalid site id"
)

// Handler handles HTTP requests for billing settings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new billing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the billing settings routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sites/:siteId/billing-settings", h.Get)
	rg.PATCH("/sites/:siteId/billing-settings", h.Patch)
}

// Get returns the effective settings for a site (defaults when none stored).
func (h *Handler) Get(c *gin.Context) {
	siteID, err := uuid.Parse(c.Param("siteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSiteID, nil)
		return
	}

	settings, err := h.svc.Effective(c.Request.Context(), siteID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, service.ToResponse(settings))
}

// Patch applies a partial update, from either a free-text command or
// structured fields.
func (h *Handler) Patch(c *gin.Context) {
	siteID, err := uuid.Parse(c.Param("siteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSiteID, nil)
		return
	}

	var req transport.PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	patch := service.PatchFromRequest(req)
	if patch.IsEmpty() && req.Command != "" {
		settings, _, err := h.svc.PatchCommand(c.Request.Context(), siteID, req.Command)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, service.ToResponse(settings))
		return
	}

	settings, err := h.svc.Patch(c.Request.Context(), siteID, patch)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, service.ToResponse(settings))
}
