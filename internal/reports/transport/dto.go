package transport

import (
	"github.com/google/uuid"
)

// EntryRequest is one worker's attendance line in a commit request. Unit is
// a man-day fraction, half day or full day.
type EntryRequest struct {
	WorkerID uuid.UUID `json:"workerId" validate:"required"`
	Unit     float64   `json:"unit" validate:"required,oneof=0.5 1"`
}

// CommitRequest is the request body for committing a daily report. ProjectID
// defaults to SiteID when omitted.
type CommitRequest struct {
	ProjectID uuid.UUID      `json:"projectId" validate:"omitempty"`
	SiteID    uuid.UUID      `json:"siteId" validate:"required"`
	WorkDate  string         `json:"workDate" validate:"required,datetime=2006-01-02"`
	Note      string         `json:"note" validate:"max=2000"`
	Entries   []EntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// EntryResponse is a persisted labor entry.
type EntryResponse struct {
	SiteID           uuid.UUID `json:"siteId"`
	WorkerID         uuid.UUID `json:"workerId"`
	Unit             float64   `json:"unit"`
	DailyRateAtEntry int64     `json:"dailyRateAtEntry"`
	Amount           int64     `json:"amount"`
}

// ReportResponse is a persisted report with its entries.
type ReportResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"projectId"`
	WorkDate    string          `json:"workDate"`
	Note        string          `json:"note,omitempty"`
	TotalManDay float64         `json:"totalManDay"`
	Entries     []EntryResponse `json:"entries"`
}
