package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	billingrepo "genba_backend/internal/billing/repository"
	billingsvc "genba_backend/internal/billing/service"
	"genba_backend/internal/estimates/repository"
	"genba_backend/internal/events"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

type stubStore struct {
	estimates map[uuid.UUID]*repository.Estimate
	items     map[uuid.UUID][]repository.EstimateItem
}

func newStubStore() *stubStore {
	return &stubStore{
		estimates: make(map[uuid.UUID]*repository.Estimate),
		items:     make(map[uuid.UUID][]repository.EstimateItem),
	}
}

func (s *stubStore) CreateWithItems(_ context.Context, est *repository.Estimate, items []repository.EstimateItem) error {
	s.estimates[est.ID] = est
	s.items[est.ID] = items
	return nil
}

func (s *stubStore) GetWithItems(_ context.Context, id uuid.UUID) (*repository.Estimate, []repository.EstimateItem, error) {
	est, ok := s.estimates[id]
	if !ok {
		return nil, nil, apperr.NotFound("estimate not found")
	}
	return est, s.items[id], nil
}

// stubSettings serves fixed billing settings, or the defaults when nil.
type stubSettings struct {
	settings *billingrepo.BillingSettings
}

func (s *stubSettings) Effective(_ context.Context, siteID uuid.UUID) (*billingrepo.BillingSettings, error) {
	if s.settings != nil {
		return s.settings, nil
	}
	return billingsvc.Defaults(siteID), nil
}

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func testService(store EstimateStore, settings SettingsProvider, gen TextGenerator) *Service {
	log := logger.New("development")
	return New(store, settings, gen, events.NewInMemoryBus(log), log)
}

func TestCommit_DefaultSettingsAreInclusiveTenPercent(t *testing.T) {
	store := newStubStore()
	svc := testService(store, &stubSettings{}, nil)

	result, err := svc.Commit(context.Background(), CommitInput{
		SiteID: uuid.New(),
		Title:  "外壁塗装",
		Items: []ItemInput{
			{Description: "足場", Qty: 2, Unit: "式", UnitPrice: 3200},
		},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// 6400 inclusive at 10%: tax 582, subtotal 5818.
	if result.Totals.Total != 6400 {
		t.Fatalf("expected total 6400, got %d", result.Totals.Total)
	}
	if result.Totals.Tax != 582 {
		t.Fatalf("expected tax 582, got %d", result.Totals.Tax)
	}
	if result.Totals.Subtotal != 5818 {
		t.Fatalf("expected subtotal 5818, got %d", result.Totals.Subtotal)
	}

	est := store.estimates[result.EstimateID]
	if est == nil {
		t.Fatal("estimate not persisted")
	}
	if est.TaxRule != "inclusive" || est.TaxRate != 10 {
		t.Fatalf("expected settings snapshot inclusive/10, got %s/%v", est.TaxRule, est.TaxRate)
	}
}

func TestCommit_UsesSiteSettings(t *testing.T) {
	siteID := uuid.New()
	settings := billingsvc.Defaults(siteID)
	settings.TaxRule = "exclusive"
	settings.Rounding = "cut"

	store := newStubStore()
	svc := testService(store, &stubSettings{settings: settings}, nil)

	result, err := svc.Commit(context.Background(), CommitInput{
		SiteID: siteID,
		Items:  []ItemInput{{Description: "材料", Qty: 1, UnitPrice: 1001}},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if result.Totals.Subtotal != 1001 || result.Totals.Tax != 100 || result.Totals.Total != 1101 {
		t.Fatalf("expected exclusive/cut totals 1001/100/1101, got %+v", result.Totals)
	}
}

func TestCommit_PersistsLineTotalsInOrder(t *testing.T) {
	store := newStubStore()
	svc := testService(store, &stubSettings{}, nil)

	result, err := svc.Commit(context.Background(), CommitInput{
		SiteID: uuid.New(),
		Items: []ItemInput{
			{Description: "A", Qty: 0.5, UnitPrice: 15333},
			{Description: "B", Qty: 1, UnitPrice: 1000},
		},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	items := store.items[result.EstimateID]
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Position != 1 || items[0].LineTotal != 7667 {
		t.Fatalf("expected first item position 1 line total 7667, got %+v", items[0])
	}
	if items[1].Position != 2 || items[1].LineTotal != 1000 {
		t.Fatalf("expected second item position 2 line total 1000, got %+v", items[1])
	}
}

func TestCommit_RejectsInvalidItems(t *testing.T) {
	svc := testService(newStubStore(), &stubSettings{}, nil)

	if _, err := svc.Commit(context.Background(), CommitInput{SiteID: uuid.New()}); err == nil {
		t.Fatal("expected error for empty items")
	}
	if _, err := svc.Commit(context.Background(), CommitInput{
		SiteID: uuid.New(),
		Items:  []ItemInput{{Description: "A", Qty: 0, UnitPrice: 100}},
	}); err == nil {
		t.Fatal("expected error for zero qty")
	}
}

func TestOptimize_UsesGeneratorWhenAvailable(t *testing.T) {
	gen := &stubGenerator{response: "足場を単管に変更すると2割下がります。"}
	svc := testService(newStubStore(), &stubSettings{}, gen)

	result, err := svc.Optimize(context.Background(), []ItemInput{
		{Description: "足場", Qty: 1, UnitPrice: 100000},
	})
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	if result.Source != "ai" {
		t.Fatalf("expected ai source, got %s", result.Source)
	}
	if gen.calls != 1 {
		t.Fatalf("expected 1 generator call, got %d", gen.calls)
	}
}

func TestOptimize_DegradesToHeuristicOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := testService(newStubStore(), &stubSettings{}, gen)

	result, err := svc.Optimize(context.Background(), []ItemInput{
		{Description: "仮設工事", Qty: 1, UnitPrice: 50000},
		{Description: "塗装工事", Qty: 2, UnitPrice: 120000},
	})
	if err != nil {
		t.Fatalf("expected degraded suggestion, not error: %v", err)
	}
	if result.Source != "heuristic" {
		t.Fatalf("expected heuristic source, got %s", result.Source)
	}
	if !strings.Contains(result.Suggestion, "塗装工事") {
		t.Fatalf("expected heuristic to target the largest line, got %q", result.Suggestion)
	}
}

func TestOptimize_NilGeneratorUsesHeuristic(t *testing.T) {
	svc := testService(newStubStore(), &stubSettings{}, nil)

	result, err := svc.Optimize(context.Background(), []ItemInput{
		{Description: "左官工事", Qty: 1, UnitPrice: 30000},
	})
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	if result.Source != "heuristic" {
		t.Fatalf("expected heuristic source, got %s", result.Source)
	}
}
