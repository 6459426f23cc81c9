package transport

import (
	"genba_backend/internal/finance"

	"github.com/google/uuid"
)

// ItemRequest is one line in an invoice commit request.
type ItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	Unit        string  `json:"unit" validate:"max=20"`
	UnitPrice   int64   `json:"unitPrice" validate:"min=0"`
}

// DraftRequest is the request body for a progress-based draft.
type DraftRequest struct {
	SiteID     uuid.UUID `json:"siteId" validate:"required"`
	PeriodFrom string    `json:"periodFrom" validate:"omitempty,datetime=2006-01-02"`
	PeriodTo   string    `json:"periodTo" validate:"omitempty,datetime=2006-01-02"`
}

// CommitRequest is the request body for issuing an invoice.
type CommitRequest struct {
	SiteID     uuid.UUID     `json:"siteId" validate:"required"`
	PeriodFrom string        `json:"periodFrom" validate:"omitempty,datetime=2006-01-02"`
	PeriodTo   string        `json:"periodTo" validate:"omitempty,datetime=2006-01-02"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
	Rounding   string        `json:"rounding" validate:"omitempty,oneof=cut round ceil"`
}

// ItemResponse is one persisted invoice line.
type ItemResponse struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   int64   `json:"unitPrice"`
	LineTotal   int64   `json:"lineTotal"`
}

// InvoiceResponse is a persisted invoice with its items.
type InvoiceResponse struct {
	ID            uuid.UUID      `json:"id"`
	SiteID        uuid.UUID      `json:"siteId"`
	InvoiceNumber string         `json:"invoiceNumber"`
	PeriodFrom    string         `json:"periodFrom"`
	PeriodTo      string         `json:"periodTo"`
	TaxRule       string         `json:"taxRule"`
	TaxRate       float64        `json:"taxRate"`
	Rounding      string         `json:"rounding"`
	Totals        finance.Totals `json:"totals"`
	IssuedAt      string         `json:"issuedAt"`
	Items         []ItemResponse `json:"items"`
}
