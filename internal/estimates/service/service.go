// Package service implements estimate commits and AI-assisted cost
// optimization. Totals are derived through the shared finance calculator
// using the site's effective billing settings.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	billingrepo "genba_backend/internal/billing/repository"
	"genba_backend/internal/estimates/repository"
	"genba_backend/internal/events"
	"genba_backend/internal/finance"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

// EstimateStore is the persistence boundary for estimates.
type EstimateStore interface {
	CreateWithItems(ctx context.Context, est *repository.Estimate, items []repository.EstimateItem) error
	GetWithItems(ctx context.Context, id uuid.UUID) (*repository.Estimate, []repository.EstimateItem, error)
}

// SettingsProvider resolves the effective billing settings for a site.
type SettingsProvider interface {
	Effective(ctx context.Context, siteID uuid.UUID) (*billingrepo.BillingSettings, error)
}

// TextGenerator produces a text completion. Nil means AI is disabled.
type TextGenerator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// ItemInput is one line in a commit request.
type ItemInput struct {
	Description string
	Qty         float64
	Unit        string
	UnitPrice   int64
}

// CommitInput is a full estimate commit request.
type CommitInput struct {
	SiteID uuid.UUID
	Title  string
	Items  []ItemInput
}

// CommitResult is returned after a successful commit.
type CommitResult struct {
	EstimateID uuid.UUID      `json:"estimateId"`
	Totals     finance.Totals `json:"totals"`
}

// OptimizeResult carries a cost-reduction suggestion. Source is "ai" when
// the model produced it and "heuristic" when the fallback did.
type OptimizeResult struct {
	Suggestion string `json:"suggestion"`
	Source     string `json:"source"`
}

// Service coordinates settings lookup, totals calculation and persistence
// for estimates.
type Service struct {
	store     EstimateStore
	settings  SettingsProvider
	generator TextGenerator
	bus       events.Bus
	log       *logger.Logger
}

// New creates the estimates service. generator may be nil when AI is
// disabled; Optimize then always answers with the heuristic suggestion.
func New(store EstimateStore, settings SettingsProvider, generator TextGenerator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, settings: settings, generator: generator, bus: bus, log: log}
}

// Commit calculates totals under the site's effective billing settings and
// persists the estimate with its items.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("at least one estimate item is required")
	}
	for _, item := range in.Items {
		if item.Qty <= 0 {
			return nil, apperr.Validation("item qty must be positive")
		}
		if item.UnitPrice < 0 {
			return nil, apperr.Validation("item unit price must not be negative")
		}
	}

	settings, err := s.settings.Effective(ctx, in.SiteID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load billing settings", err)
	}

	lines := make([]finance.LineItem, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, finance.LineItem{
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
		})
	}

	rule := finance.ParseTaxRule(settings.TaxRule)
	rounding := finance.ParseRounding(settings.Rounding)
	totals := finance.Calculate(rule, settings.TaxRate, rounding, lines)
	lineTotals := finance.LineTotals(lines)

	est := &repository.Estimate{
		ID:        uuid.New(),
		ProjectID: in.SiteID,
		Title:     in.Title,
		TaxRule:   string(rule),
		TaxRate:   settings.TaxRate,
		Rounding:  string(rounding),
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		CreatedAt: time.Now(),
	}

	items := make([]repository.EstimateItem, 0, len(in.Items))
	for i, item := range in.Items {
		items = append(items, repository.EstimateItem{
			ID:          uuid.New(),
			Position:    i + 1,
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotals[i],
		})
	}

	if err := s.store.CreateWithItems(ctx, est, items); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to save estimate", err)
	}

	s.bus.Publish(ctx, events.EstimateCreated{
		BaseEvent:  events.NewBaseEvent(),
		EstimateID: est.ID,
		ProjectID:  in.SiteID,
		Total:      totals.Total,
	})

	return &CommitResult{EstimateID: est.ID, Totals: totals}, nil
}

// Get returns an estimate with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Estimate, []repository.EstimateItem, error) {
	return s.store.GetWithItems(ctx, id)
}

// Optimize asks the model for cost-reduction ideas over the given items.
// Generation failures degrade to a heuristic suggestion; this method never
// returns an AI error to the caller.
func (s *Service) Optimize(ctx context.Context, items []ItemInput) (*OptimizeResult, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("at least one item is required")
	}

	if s.generator != nil {
		suggestion, err := s.generator.Generate(ctx, optimizeSystemPrompt, buildOptimizePrompt(items))
		if err == nil {
			return &OptimizeResult{Suggestion: suggestion, Source: "ai"}, nil
		}
		s.log.Warn("estimate optimization fell back to heuristic", "error", err)
	}

	return &OptimizeResult{Suggestion: heuristicSuggestion(items), Source: "heuristic"}, nil
}

const optimizeSystemPrompt = "あなたは建設業の積算担当者です。" +
	"見積明細を確認し、品質を落とさずに原価を下げる具体的な提案を日本語で3件以内、箇条書きで返してください。"

func buildOptimizePrompt(items []ItemInput) string {
	var b strings.Builder
	b.WriteString("見積明細:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %.1f%s x %d円\n", item.Description, item.Qty, item.Unit, item.UnitPrice)
	}
	return b.String()
}

// heuristicSuggestion points at the most expensive line, which in practice
// is where renegotiation moves the total.
func heuristicSuggestion(items []ItemInput) string {
	largest := items[0]
	largestTotal := finance.LineTotal(largest.Qty, largest.UnitPrice)
	for _, item := range items[1:] {
		if t := finance.LineTotal(item.Qty, item.UnitPrice); t > largestTotal {
			largest, largestTotal = item, t
		}
	}
	return fmt.Sprintf("最も金額の大きい「%s」(%d円) の単価見直し、または数量の再確認を検討してください。", largest.Description, largestTotal)
}
