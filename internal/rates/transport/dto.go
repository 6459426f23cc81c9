package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateRateRequest is the request body for recording a worker rate.
type CreateRateRequest struct {
	WorkerID      uuid.UUID  `json:"workerId" validate:"required"`
	Scope         string     `json:"scope" validate:"required,oneof=site company"`
	SiteID        *uuid.UUID `json:"siteId"`
	DailyRate     int64      `json:"dailyRate" validate:"min=0"`
	EffectiveFrom time.Time  `json:"effectiveFrom" validate:"required"`
}

// RateResponse is a stored rate row.
type RateResponse struct {
	ID            uuid.UUID  `json:"id"`
	WorkerID      uuid.UUID  `json:"workerId"`
	Scope         string     `json:"scope"`
	SiteID        *uuid.UUID `json:"siteId,omitempty"`
	DailyRate     int64      `json:"dailyRate"`
	EffectiveFrom string     `json:"effectiveFrom"`
}
