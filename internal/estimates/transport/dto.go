package transport

import (
	"genba_backend/internal/finance"

	"github.com/google/uuid"
)

// ItemRequest is one line in an estimate commit request.
type ItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	Unit        string  `json:"unit" validate:"max=20"`
	UnitPrice   int64   `json:"unitPrice" validate:"min=0"`
}

// CommitRequest is the request body for committing an estimate.
type CommitRequest struct {
	SiteID uuid.UUID     `json:"siteId" validate:"required"`
	Title  string        `json:"title" validate:"max=200"`
	Items  []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OptimizeRequest is the request body for an optimization suggestion.
type OptimizeRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ItemResponse is one persisted estimate line.
type ItemResponse struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   int64   `json:"unitPrice"`
	LineTotal   int64   `json:"lineTotal"`
}

// EstimateResponse is a persisted estimate with its items.
type EstimateResponse struct {
	ID      uuid.UUID      `json:"id"`
	SiteID  uuid.UUID      `json:"siteId"`
	Title   string         `json:"title,omitempty"`
	TaxRule string         `json:"taxRule"`
	TaxRate float64        `json:"taxRate"`
	Totals  finance.Totals `json:"totals"`
	Items   []ItemResponse `json:"items"`
}
