package handler

import (
	"net/http"

	"genba_backend/internal/estimates/service"
	"genba_backend/internal/estimates/transport"
	"genba_backend/internal/finance"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for estimates.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new estimates handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the estimate routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Commit)
	rg.POST("/optimize", h.Optimize)
	rg.GET("/:id", h.Get)
}

// Commit creates an estimate from its items.
func (h *Handler) Commit(c *gin.Context) {
	var req transport.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Commit(c.Request.Context(), service.CommitInput{
		SiteID: req.SiteID,
		Title:  req.Title,
		Items:  toItemInputs(req.Items),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Optimize returns a cost-reduction suggestion for the given items.
func (h *Handler) Optimize(c *gin.Context) {
	var req transport.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Optimize(c.Request.Context(), toItemInputs(req.Items))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns an estimate with its items.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid estimate id", nil)
		return
	}

	est, items, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.EstimateResponse{
		ID:      est.ID,
		SiteID:  est.ProjectID,
		Title:   est.Title,
		TaxRule: est.TaxRule,
		TaxRate: est.TaxRate,
		Totals:  finance.Totals{Subtotal: est.Subtotal, Tax: est.Tax, Total: est.Total},
		Items:   make([]transport.ItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, transport.ItemResponse{
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	httpkit.OK(c, resp)
}

func toItemInputs(items []transport.ItemRequest) []service.ItemInput {
	out := make([]service.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.ItemInput{
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}
