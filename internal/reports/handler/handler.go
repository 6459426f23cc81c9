package handler

import (
	"net/http"
	"time"

	"genba_backend/internal/reports/service"
	"genba_backend/internal/reports/transport"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for daily reports.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new reports handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the report routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Commit)
	rg.GET("", h.Get)
}

// Commit upserts the daily report for a site and work date.
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

	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid work date", nil)
		return
	}

	in := service.CommitInput{
		ProjectID: req.ProjectID,
		SiteID:    req.SiteID,
		WorkDate:  workDate,
		Note:      req.Note,
		Entries:   make([]service.EntryInput, 0, len(req.Entries)),
	}
	for _, e := range req.Entries {
		in.Entries = append(in.Entries, service.EntryInput{WorkerID: e.WorkerID, Unit: e.Unit})
	}

	result, err := h.svc.Commit(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get returns the report for a project and work date. projectId defaults to
// siteId when omitted, matching single-site projects.
func (h *Handler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		projectID, err = uuid.Parse(c.Query("siteId"))
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid project id", nil)
			return
		}
	}
	workDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
		return
	}

	report, entries, err := h.svc.Get(c.Request.Context(), projectID, workDate)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ReportResponse{
		ID:          report.ID,
		ProjectID:   report.ProjectID,
		WorkDate:    report.WorkDate.Format("2006-01-02"),
		Note:        report.Note,
		TotalManDay: report.TotalManDay,
		Entries:     make([]transport.EntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, transport.EntryResponse{
			SiteID:           e.SiteID,
			WorkerID:         e.WorkerID,
			Unit:             e.Unit,
			DailyRateAtEntry: e.DailyRateAtEntry,
			Amount:           e.Amount,
		})
	}
	httpkit.OK(c, resp)
}
