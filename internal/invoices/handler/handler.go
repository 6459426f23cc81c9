package handler

import (
	"net/http"
	"time"

	"genba_backend/internal/finance"
	"genba_backend/internal/invoices/service"
	"genba_backend/internal/invoices/transport"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for invoices.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new invoices handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the invoice routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/draft", h.Draft)
	rg.POST("", h.Commit)
	rg.GET("/:id", h.Get)
}

// Draft previews an invoice from committed labor without persisting it.
func (h *Handler) Draft(c *gin.Context) {
	var req transport.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	from, to, err := parsePeriod(req.PeriodFrom, req.PeriodTo)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid period", nil)
		return
	}

	draft, err := h.svc.DraftFromProgress(c.Request.Context(), req.SiteID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, draft)
}

// Commit issues an invoice from the given lines.
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

	from, to, err := parsePeriod(req.PeriodFrom, req.PeriodTo)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid period", nil)
		return
	}

	in := service.CommitInput{
		SiteID:           req.SiteID,
		PeriodFrom:       from,
		PeriodTo:         to,
		RoundingOverride: req.Rounding,
		Items:            make([]service.ItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.ItemInput{
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
		})
	}

	result, err := h.svc.Commit(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get returns an invoice with its items.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid invoice id", nil)
		return
	}

	inv, items, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.InvoiceResponse{
		ID:            inv.ID,
		SiteID:        inv.ProjectID,
		InvoiceNumber: inv.InvoiceNumber,
		PeriodFrom:    inv.PeriodFrom.Format("2006-01-02"),
		PeriodTo:      inv.PeriodTo.Format("2006-01-02"),
		TaxRule:       inv.TaxRule,
		TaxRate:       inv.TaxRate,
		Rounding:      inv.Rounding,
		Totals:        finance.Totals{Subtotal: inv.Subtotal, Tax: inv.Tax, Total: inv.Total},
		IssuedAt:      inv.IssuedAt.Format(time.RFC3339),
		Items:         make([]transport.ItemResponse, 0, len(items)),
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

// parsePeriod parses the optional period bounds. The service defaults an
// empty period to the current calendar month.
func parsePeriod(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
		// The stored bound is exclusive; the API takes the last day inclusive.
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}
