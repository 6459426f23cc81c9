package handler

import (
	"net/http"
	"time"

	"genba_backend/internal/rates/service"
	"genba_backend/internal/rates/transport"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for worker rates.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new rates handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the rate routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/resolve", h.Resolve)
}

// Create records a new worker rate.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rate, err := h.svc.Create(c.Request.Context(), req.WorkerID, req.Scope, req.SiteID, req.DailyRate, req.EffectiveFrom)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.RateResponse{
		ID:            rate.ID,
		WorkerID:      rate.WorkerID,
		Scope:         rate.Scope,
		SiteID:        rate.SiteID,
		DailyRate:     rate.DailyRate,
		EffectiveFrom: rate.EffectiveFrom.Format("2006-01-02"),
	})
}

// Resolve returns the applicable daily rate for a worker at a site on a date.
func (h *Handler) Resolve(c *gin.Context) {
	workerID, err := uuid.Parse(c.Query("workerId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid worker id", nil)
		return
	}
	siteID, err := uuid.Parse(c.Query("siteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid site id", nil)
		return
	}
	workDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
		return
	}

	resolution, err := h.svc.Resolve(c.Request.Context(), workerID, siteID, workDate)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resolution)
}
