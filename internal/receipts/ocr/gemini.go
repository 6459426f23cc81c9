package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const receiptSystemInstruction = "あなたは建設現場の経理担当者です。領収書や納品書の画像から情報を正確に読み取ります。"

const receiptPrompt = `この画像から以下の情報を読み取り、JSONだけを返してください。
読み取れない項目は省略してください。金額は税込の合計を円単位の整数で返します。
{"vendor": "店名", "amount": 1234, "date": "2006-01-02"}`

// VisionGenerator produces text from an image prompt. Satisfied by the
// Gemini client.
type VisionGenerator interface {
	GenerateFromImage(ctx context.Context, systemInstruction, prompt, mimeType string, data []byte) (string, error)
}

// GeminiInvoker runs receipt OCR through the Gemini vision API.
type GeminiInvoker struct {
	gen VisionGenerator
}

// NewGeminiInvoker creates an invoker backed by the given generator.
func NewGeminiInvoker(gen VisionGenerator) *GeminiInvoker {
	return &GeminiInvoker{gen: gen}
}

// ExtractReceipt sends the image to the model and parses its JSON answer.
func (g *GeminiInvoker) ExtractReceipt(ctx context.Context, contentType string, image []byte) (Extraction, error) {
	text, err := g.gen.GenerateFromImage(ctx, receiptSystemInstruction, receiptPrompt, contentType, image)
	if err != nil {
		return Extraction{}, fmt.Errorf("receipt ocr failed: %w", err)
	}
	return parseExtraction(text)
}

// parseExtraction decodes the model's JSON answer, tolerating markdown code
// fences around it.
func parseExtraction(text string) (Extraction, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw struct {
		Vendor string `json:"vendor"`
		Amount int64  `json:"amount"`
		Date   string `json:"date"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Extraction{}, fmt.Errorf("unparseable ocr response: %w", err)
	}
	if raw.Amount < 0 {
		raw.Amount = 0
	}

	out := Extraction{Vendor: strings.TrimSpace(raw.Vendor), Amount: raw.Amount}
	if raw.Date != "" {
		if d, err := time.Parse("2006-01-02", raw.Date); err == nil {
			out.OccurredOn = &d
		}
	}
	return out, nil
}
