// Package ocr extracts structured fields from receipt photos. The live
// invoker goes through the Gemini vision API; the mock invoker serves a
// canned extraction for environments without an API key.
package ocr

import (
	"context"
	"time"
)

// Extraction is what OCR could read off a receipt photo. Zero-valued fields
// mean the model could not find them.
type Extraction struct {
	Vendor     string
	Amount     int64
	OccurredOn *time.Time
}

// Invoker runs OCR on a single receipt image.
type Invoker interface {
	ExtractReceipt(ctx context.Context, contentType string, image []byte) (Extraction, error)
}
