package service

import (
	"context"
	"strings"
	"testing"
	"time"

	billingrepo "genba_backend/internal/billing/repository"
	billingsvc "genba_backend/internal/billing/service"
	"genba_backend/internal/events"
	"genba_backend/internal/invoices/repository"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

type stubStore struct {
	invoices map[uuid.UUID]*repository.Invoice
	items    map[uuid.UUID][]repository.InvoiceItem
}

func newStubStore() *stubStore {
	return &stubStore{
		invoices: make(map[uuid.UUID]*repository.Invoice),
		items:    make(map[uuid.UUID][]repository.InvoiceItem),
	}
}

func (s *stubStore) CreateWithItems(_ context.Context, inv *repository.Invoice, items []repository.InvoiceItem) error {
	inv.InvoiceNumber = "INV-" + inv.IssuedAt.Format("200601") + "-0001"
	s.invoices[inv.ID] = inv
	s.items[inv.ID] = items
	return nil
}

func (s *stubStore) GetWithItems(_ context.Context, id uuid.UUID) (*repository.Invoice, []repository.InvoiceItem, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil, apperr.NotFound("invoice not found")
	}
	return inv, s.items[id], nil
}

type stubSettings struct {
	settings *billingrepo.BillingSettings
}

func (s *stubSettings) Effective(_ context.Context, siteID uuid.UUID) (*billingrepo.BillingSettings, error) {
	if s.settings != nil {
		return s.settings, nil
	}
	return billingsvc.Defaults(siteID), nil
}

type stubLabor struct {
	amount int64
	units  float64
	from   time.Time
	to     time.Time
}

func (s *stubLabor) SumEntriesForPeriod(_ context.Context, _ uuid.UUID, from, to time.Time) (int64, float64, error) {
	s.from, s.to = from, to
	return s.amount, s.units, nil
}

func testService(store InvoiceStore, settings SettingsProvider, labor LaborSummer) *Service {
	log := logger.New("development")
	return New(store, settings, labor, events.NewInMemoryBus(log), log)
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDraftFromProgress_SyntheticLineCarriesLaborTotal(t *testing.T) {
	labor := &stubLabor{amount: 90000, units: 6}
	svc := testService(newStubStore(), &stubSettings{}, labor)

	draft, err := svc.DraftFromProgress(context.Background(), uuid.New(),
		date("2024-07-01"), date("2024-08-01"))
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}

	if len(draft.Items) != 1 {
		t.Fatalf("expected one synthetic line, got %d", len(draft.Items))
	}
	line := draft.Items[0]
	if line.UnitPrice != 90000 || line.Qty != 1 {
		t.Fatalf("expected synthetic line qty 1 price 90000, got %+v", line)
	}
	if !strings.Contains(line.Description, "2024-07-01") || !strings.Contains(line.Description, "2024-07-31") {
		t.Fatalf("expected period label in description, got %q", line.Description)
	}
	if !strings.Contains(line.Description, "6.0人日") {
		t.Fatalf("expected man-day count in description, got %q", line.Description)
	}

	// Defaults are inclusive 10% half-up: 90000 contains 8182 tax.
	if draft.Totals.Total != 90000 || draft.Totals.Tax != 8182 {
		t.Fatalf("expected inclusive totals 90000/8182, got %+v", draft.Totals)
	}
}

func TestDraftFromProgress_DefaultsToCurrentMonth(t *testing.T) {
	labor := &stubLabor{amount: 10000, units: 1}
	svc := testService(newStubStore(), &stubSettings{}, labor)

	if _, err := svc.DraftFromProgress(context.Background(), uuid.New(), time.Time{}, time.Time{}); err != nil {
		t.Fatalf("draft failed: %v", err)
	}

	now := time.Now()
	wantFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if !labor.from.Equal(wantFrom) {
		t.Fatalf("expected period start %v, got %v", wantFrom, labor.from)
	}
	if !labor.to.Equal(wantFrom.AddDate(0, 1, 0)) {
		t.Fatalf("expected period end %v, got %v", wantFrom.AddDate(0, 1, 0), labor.to)
	}
}

func TestDraftFromProgress_RejectsInvertedPeriod(t *testing.T) {
	svc := testService(newStubStore(), &stubSettings{}, &stubLabor{})

	if _, err := svc.DraftFromProgress(context.Background(), uuid.New(),
		date("2024-08-01"), date("2024-07-01")); err == nil {
		t.Fatal("expected error for inverted period")
	}
}

func TestCommit_AllocatesNumberAndPersists(t *testing.T) {
	store := newStubStore()
	svc := testService(store, &stubSettings{}, &stubLabor{})

	result, err := svc.Commit(context.Background(), CommitInput{
		SiteID: uuid.New(),
		Items:  []ItemInput{{Description: "出来高精算", Qty: 1, UnitPrice: 90000}},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if !strings.HasPrefix(result.InvoiceNumber, "INV-") {
		t.Fatalf("expected allocated invoice number, got %q", result.InvoiceNumber)
	}
	if result.Totals.Total != 90000 {
		t.Fatalf("expected inclusive total 90000, got %d", result.Totals.Total)
	}
	if store.invoices[result.InvoiceID] == nil {
		t.Fatal("invoice not persisted")
	}
}

func TestCommit_RoundingOverrideAppliesToThisDocumentOnly(t *testing.T) {
	siteID := uuid.New()
	settings := billingsvc.Defaults(siteID)
	settings.TaxRule = "exclusive"
	settings.Rounding = "round"

	store := newStubStore()
	svc := testService(store, &stubSettings{settings: settings}, &stubLabor{})

	// 1001 at 10% exclusive: round gives 100, ceil gives 101.
	result, err := svc.Commit(context.Background(), CommitInput{
		SiteID:           siteID,
		Items:            []ItemInput{{Description: "材料", Qty: 1, UnitPrice: 1001}},
		RoundingOverride: "ceil",
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if result.Totals.Tax != 101 {
		t.Fatalf("expected ceil override tax 101, got %d", result.Totals.Tax)
	}

	inv := store.invoices[result.InvoiceID]
	if inv.Rounding != "ceil" {
		t.Fatalf("expected override recorded on document, got %s", inv.Rounding)
	}
}

func TestCommit_RejectsEmptyItems(t *testing.T) {
	svc := testService(newStubStore(), &stubSettings{}, &stubLabor{})

	if _, err := svc.Commit(context.Background(), CommitInput{SiteID: uuid.New()}); err == nil {
		t.Fatal("expected error for empty items")
	}
}
