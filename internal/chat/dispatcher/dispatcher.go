// Package dispatcher routes chat tool actions to their implementations.
// Only allow-listed actions are ever executed; results are normalized into a
// small set of kinds the chat surface knows how to render.
package dispatcher

import (
	"context"
	"encoding/json"

	"genba_backend/internal/chat/blocks"
	"genba_backend/internal/events"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

// Allow-listed tool actions.
const (
	ActionOpenPage        = "open_page"
	ActionExportCSV       = "export_csv"
	ActionPreviewPDF      = "preview_pdf"
	ActionMaterialsIngest = "materials.ingest"
	ActionEstimateDraft   = "estimate.draft"
	ActionInvoiceCreate   = "invoice.create"
)

var allowedActions = map[string]bool{
	ActionOpenPage:        true,
	ActionExportCSV:       true,
	ActionPreviewPDF:      true,
	ActionMaterialsIngest: true,
	ActionEstimateDraft:   true,
	ActionInvoiceCreate:   true,
}

// ResultKind classifies a normalized tool result.
type ResultKind string

const (
	KindCSV      ResultKind = "csv"
	KindOpenPage ResultKind = "open_page"
	KindBlocks   ResultKind = "blocks"
	KindError    ResultKind = "error"
	KindUnknown  ResultKind = "unknown"
)

// ToolResult is the normalized outcome of a tool dispatch. Exactly the
// fields matching Kind are populated; Raw preserves the unrecognized body
// for unknown results.
type ToolResult struct {
	Kind    ResultKind      `json:"kind"`
	CSV     string          `json:"csv,omitempty"`
	URL     string          `json:"url,omitempty"`
	Blocks  []blocks.Block  `json:"blocks,omitempty"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// Invoker executes a tool action remotely and returns the raw response body.
type Invoker interface {
	Invoke(ctx context.Context, action string, params map[string]string) ([]byte, error)
}

// Dispatcher validates, executes and normalizes tool actions. When mock mode
// is enabled every action is served from canned fixtures and no remote call
// is made.
type Dispatcher struct {
	invoker     Invoker
	mockEnabled bool
	bus         events.Bus
	log         *logger.Logger
}

// New creates a dispatcher. invoker may be nil when mock mode is enabled.
func New(invoker Invoker, mockEnabled bool, bus events.Bus, log *logger.Logger) *Dispatcher {
	return &Dispatcher{invoker: invoker, mockEnabled: mockEnabled, bus: bus, log: log}
}

// MockEnabled reports whether the dispatcher serves canned fixtures.
func (d *Dispatcher) MockEnabled() bool {
	return d.mockEnabled
}

// Dispatch executes an allow-listed action and returns the normalized
// result. Actions outside the allow-list fail before any execution.
func (d *Dispatcher) Dispatch(ctx context.Context, userID uuid.UUID, action string, params map[string]string) (ToolResult, error) {
	if !allowedActions[action] {
		return ToolResult{}, apperr.NotFound("unknown tool action: " + action)
	}

	var result ToolResult
	if d.mockEnabled {
		result = mockResult(action, params)
	} else {
		body, err := d.invoker.Invoke(ctx, action, params)
		if err != nil {
			d.log.Error("tool invocation failed", "action", action, "error", err)
			result = ToolResult{Kind: KindError, Message: "tool execution failed"}
		} else {
			result = normalize(action, body)
		}
	}

	d.log.ToolDispatch(action, string(result.Kind), d.mockEnabled)
	d.bus.Publish(ctx, events.ToolDispatched{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     userID,
		Action:     action,
		ResultKind: string(result.Kind),
	})

	return result, nil
}

// normalize maps a raw tool response body onto a ToolResult. export_csv
// responses are raw CSV text; everything else is JSON probed for the
// error/blocks/url envelope keys, in that order.
func normalize(action string, body []byte) ToolResult {
	if action == ActionExportCSV {
		return ToolResult{Kind: KindCSV, CSV: string(body)}
	}

	var envelope struct {
		Error  string         `json:"error"`
		Blocks []blocks.Block `json:"blocks"`
		URL    string         `json:"url"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ToolResult{Kind: KindUnknown, Raw: json.RawMessage(body)}
	}

	switch {
	case envelope.Error != "":
		return ToolResult{Kind: KindError, Message: envelope.Error}
	case len(envelope.Blocks) > 0:
		return ToolResult{Kind: KindBlocks, Blocks: envelope.Blocks}
	case envelope.URL != "":
		return ToolResult{Kind: KindOpenPage, URL: envelope.URL}
	default:
		return ToolResult{Kind: KindUnknown, Raw: json.RawMessage(body)}
	}
}
