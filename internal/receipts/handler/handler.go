package handler

import (
	"net/http"
	"time"

	"genba_backend/internal/receipts/repository"
	"genba_backend/internal/receipts/service"
	"genba_backend/internal/receipts/transport"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for receipts.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new receipts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the receipt routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-url", h.UploadURL)
	rg.POST("", h.Capture)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

// UploadURL returns a presigned PUT URL for a receipt file.
func (h *Handler) UploadURL(c *gin.Context) {
	var req transport.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	presigned, err := h.svc.UploadURL(c.Request.Context(), req.SiteID, req.FileName, req.ContentType, req.SizeBytes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

// Capture records an already-uploaded receipt.
func (h *Handler) Capture(c *gin.Context) {
	var req transport.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	var occurredOn *time.Time
	if req.OccurredOn != "" {
		d, err := time.Parse("2006-01-02", req.OccurredOn)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid occurred-on date", nil)
			return
		}
		occurredOn = &d
	}

	result, err := h.svc.Capture(c.Request.Context(), service.CaptureInput{
		SiteID:      req.SiteID,
		Kind:        req.Kind,
		Description: req.Description,
		Account:     req.Account,
		Vendor:      req.Vendor,
		Amount:      req.Amount,
		FileRefs:    req.FileRefs,
		ContentType: req.ContentType,
		OccurredOn:  occurredOn,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get returns a receipt with a download URL.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid receipt id", nil)
		return
	}

	rec, downloadURL, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := toResponse(rec)
	resp.DownloadURL = downloadURL
	httpkit.OK(c, resp)
}

// List returns the receipts for a site.
func (h *Handler) List(c *gin.Context) {
	siteID, err := uuid.Parse(c.Query("siteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid site id", nil)
		return
	}

	receipts, err := h.svc.List(c.Request.Context(), siteID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		out = append(out, toResponse(&receipts[i]))
	}
	httpkit.OK(c, out)
}

func toResponse(rec *repository.Receipt) transport.ReceiptResponse {
	resp := transport.ReceiptResponse{
		ID:          rec.ID,
		SiteID:      rec.ProjectID,
		Kind:        rec.Kind,
		Description: rec.Description,
		Amount:      rec.Amount,
		Currency:    rec.Currency,
		Account:     rec.Account,
		Vendor:      rec.Vendor,
		FileRefs:    rec.FileRefs,
		OCRStatus:   rec.OCRStatus,
	}
	if rec.OccurredOn != nil {
		occurred := rec.OccurredOn.Format("2006-01-02")
		resp.OccurredOn = &occurred
	}
	return resp
}
