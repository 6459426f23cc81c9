package intent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_DailyReportRequest(t *testing.T) {
	c := New()

	result := c.Parse("今日の日報お願い")

	if result.Intent != TagCreateReport {
		t.Fatalf("expected create_report, got %s", result.Intent)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", result.Confidence)
	}
	if result.NeedsConfirmation {
		t.Fatalf("expected no confirmation needed")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	c := New()

	for _, text := range []string{"", "   ", "\n\t"} {
		result := c.Parse(text)
		if result.Intent != TagUnknown {
			t.Fatalf("input %q: expected unknown, got %s", text, result.Intent)
		}
		if result.Confidence != 0 {
			t.Fatalf("input %q: expected confidence 0, got %v", text, result.Confidence)
		}
	}
}

func TestParse_NoMatchIsWeakGuess(t *testing.T) {
	c := New()

	result := c.Parse("おはようございます")

	if result.Intent != TagUnknown {
		t.Fatalf("expected unknown, got %s", result.Intent)
	}
	if result.Confidence != 0.2 {
		t.Fatalf("expected confidence 0.2, got %v", result.Confidence)
	}
	if result.Matched != "" {
		t.Fatalf("expected no matched pattern, got %q", result.Matched)
	}
}

func TestParse_NegativeHitForcesConfirmation(t *testing.T) {
	c := New()

	// "昨日の日報見せて" asks to view a report, not create one. The positive
	// cue still wins the intent but the caller must confirm.
	result := c.Parse("昨日の日報見せて")

	if result.Intent != TagCreateReport {
		t.Fatalf("expected create_report, got %s", result.Intent)
	}
	if result.Confidence != 0.6 {
		t.Fatalf("expected confidence 0.6, got %v", result.Confidence)
	}
	if !result.NeedsConfirmation {
		t.Fatalf("expected needsConfirmation")
	}
	if result.Reason != ReasonNegativeHit {
		t.Fatalf("expected reason %q, got %q", ReasonNegativeHit, result.Reason)
	}
}

func TestParse_DeclarationOrderBreaksTies(t *testing.T) {
	c := New()

	// Mentions both a receipt (upload_doc) and an invoice (create_invoice).
	// upload_doc is declared earlier, so it must win.
	result := c.Parse("レシートと請求書")

	if result.Intent != TagUploadDoc {
		t.Fatalf("expected upload_doc to win by declaration order, got %s", result.Intent)
	}

	// Report beats everything when present.
	result = c.Parse("日報と請求書お願い")
	if result.Intent != TagCreateReport {
		t.Fatalf("expected create_report to win by declaration order, got %s", result.Intent)
	}
}

func TestParse_Deterministic(t *testing.T) {
	c := New()

	inputs := []string{
		"今日の日報お願い",
		"請求書を作って",
		"見積を安くしたい",
		"進捗どう?",
		"税抜にしてね",
		"現場一覧を開いて",
		"whatever else",
	}

	for _, text := range inputs {
		first := c.Parse(text)
		for i := 0; i < 5; i++ {
			if got := c.Parse(text); got != first {
				t.Fatalf("input %q: non-deterministic result %+v vs %+v", text, got, first)
			}
		}
	}
}

func TestParse_EvaluationOrder(t *testing.T) {
	c := New()

	expected := []Tag{
		TagCreateReport,
		TagUploadDoc,
		TagCreateInvoice,
		TagOptimizeEstimate,
		TagSetBillingMode,
		TagUpdateProgress,
		TagOpenSiteManager,
	}

	tags := c.Tags()
	if len(tags) != len(expected) {
		t.Fatalf("expected %d intents, got %d", len(expected), len(tags))
	}
	for i, tag := range expected {
		if tags[i] != tag {
			t.Fatalf("position %d: expected %s, got %s", i, tag, tags[i])
		}
	}
}

func TestParse_BillingBeforeProgress(t *testing.T) {
	c := New()

	// 出来高払い is a billing-mode change even though 出来高 also hints
	// at progress reporting.
	result := c.Parse("出来高払いにして")

	if result.Intent != TagSetBillingMode {
		t.Fatalf("expected set_billing_mode, got %s", result.Intent)
	}
}

func TestNewWithOverlayFile_AppendsPatterns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	overlay := `intents:
  create_report:
    positive:
      - "デイリー"
`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("failed to write overlay: %v", err)
	}

	c, err := NewWithOverlayFile(path)
	if err != nil {
		t.Fatalf("failed to load overlay: %v", err)
	}

	result := c.Parse("デイリーお願い")
	if result.Intent != TagCreateReport {
		t.Fatalf("expected overlay pattern to classify as create_report, got %s", result.Intent)
	}

	// Built-in patterns are untouched.
	if got := c.Parse("今日の日報お願い"); got.Intent != TagCreateReport {
		t.Fatalf("expected built-in pattern to still work, got %s", got.Intent)
	}
}

func TestNewWithOverlayFile_RejectsUnknownIntent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	overlay := `intents:
  delete_everything:
    positive: ["x"]
`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("failed to write overlay: %v", err)
	}

	if _, err := NewWithOverlayFile(path); err == nil {
		t.Fatalf("expected error for unknown intent in overlay")
	}
}
