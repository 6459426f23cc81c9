package exports

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"genba_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// LaborLister is the data boundary for the CSV handler.
type LaborLister interface {
	ListLaborRows(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]LaborRow, error)
}

// Handler serves CSV export downloads.
type Handler struct {
	repo LaborLister
}

// NewHandler creates a new export handler.
func NewHandler(repo LaborLister) *Handler {
	return &Handler{repo: repo}
}

// ExportLaborCSV streams the labor entries of a site as CSV. The period is
// inclusive on both ends in the query string; unset defaults to the current
// month.
func (h *Handler) ExportLaborCSV(c *gin.Context) {
	siteID, err := uuid.Parse(c.Query("siteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid siteId", nil)
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	rows, err := h.repo.ListLaborRows(c.Request.Context(), siteID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=labor-"+from.Format(dateLayout)+".csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write([]string{"date", "worker", "unit", "amount"}); err != nil {
		return
	}
	for _, row := range rows {
		record := []string{
			row.WorkDate.Format(dateLayout),
			row.WorkerName,
			strconv.FormatFloat(row.Unit, 'f', -1, 64),
			strconv.FormatInt(row.Amount, 10),
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
	writer.Flush()
}

// parseDateRange reads inclusive from/to query dates and returns a
// half-open [from, to) pair.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from date", nil)
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to date", nil)
			return time.Time{}, time.Time{}, false
		}
		to = parsed.AddDate(0, 0, 1)
	}

	if !to.After(from) {
		httpkit.Error(c, http.StatusBadRequest, "to must not precede from", nil)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
