// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"genba_backend/internal/chat/intent"
	"genba_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Chat Domain Events
// =============================================================================

// IntentClassified is published for every classified chat message.
type IntentClassified struct {
	BaseEvent
	UserID     uuid.UUID  `json:"userId"`
	SiteID     *uuid.UUID `json:"siteId,omitempty"`
	Intent     intent.Tag `json:"intent"`
	Confidence float64    `json:"confidence"`
}

func (e IntentClassified) EventName() string { return "chat.intent.classified" }

// ToolDispatched is published after a tool action completes.
type ToolDispatched struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Action     string    `json:"action"`
	ResultKind string    `json:"resultKind"`
}

func (e ToolDispatched) EventName() string { return "chat.tool.dispatched" }

// =============================================================================
// Reports Domain Events
// =============================================================================

// ReportCommitted is published when a daily report commit succeeds.
type ReportCommitted struct {
	BaseEvent
	ReportID    uuid.UUID `json:"reportId"`
	ProjectID   uuid.UUID `json:"projectId"`
	WorkDate    string    `json:"workDate"`
	TotalManDay float64   `json:"totalManDay"`
	WorkerCount int       `json:"workerCount"`
}

func (e ReportCommitted) EventName() string { return "reports.report.committed" }

// =============================================================================
// Estimates / Invoices Domain Events
// =============================================================================

// EstimateCreated is published when an estimate commit succeeds.
type EstimateCreated struct {
	BaseEvent
	EstimateID uuid.UUID `json:"estimateId"`
	ProjectID  uuid.UUID `json:"projectId"`
	Total      int64     `json:"total"`
}

func (e EstimateCreated) EventName() string { return "estimates.estimate.created" }

// InvoiceIssued is published when an invoice commit succeeds.
type InvoiceIssued struct {
	BaseEvent
	InvoiceID     uuid.UUID `json:"invoiceId"`
	ProjectID     uuid.UUID `json:"projectId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	PeriodFrom    string    `json:"periodFrom"`
	PeriodTo      string    `json:"periodTo"`
	Total         int64     `json:"total"`
}

func (e InvoiceIssued) EventName() string { return "invoices.invoice.issued" }

// =============================================================================
// Receipts Domain Events
// =============================================================================

// ReceiptCaptured is published when a receipt capture row is created.
type ReceiptCaptured struct {
	BaseEvent
	ReceiptID uuid.UUID `json:"receiptId"`
	ProjectID uuid.UUID `json:"projectId"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
}

func (e ReceiptCaptured) EventName() string { return "receipts.receipt.captured" }
