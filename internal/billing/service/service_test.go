package service

import (
	"context"
	"testing"

	"genba_backend/internal/billing/repository"
	"genba_backend/platform/apperr"

	"github.com/google/uuid"
)

type stubStore struct {
	settings map[uuid.UUID]*repository.BillingSettings
	upserts  int
}

func newStubStore() *stubStore {
	return &stubStore{settings: make(map[uuid.UUID]*repository.BillingSettings)}
}

func (s *stubStore) Get(_ context.Context, siteID uuid.UUID) (*repository.BillingSettings, error) {
	if settings, ok := s.settings[siteID]; ok {
		copied := *settings
		return &copied, nil
	}
	return nil, apperr.NotFound("billing settings not found")
}

func (s *stubStore) Upsert(_ context.Context, settings *repository.BillingSettings) error {
	copied := *settings
	s.settings[settings.SiteID] = &copied
	s.upserts++
	return nil
}

func TestPatch_CreatesDefaultsOnFirstPatch(t *testing.T) {
	store := newStubStore()
	svc := New(store)
	siteID := uuid.New()

	rule := "exclusive"
	settings, err := svc.Patch(context.Background(), siteID, Patch{TaxRule: &rule})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}

	if settings.TaxRule != "exclusive" {
		t.Fatalf("expected patched tax_rule, got %s", settings.TaxRule)
	}
	// All unmentioned fields keep the documented defaults.
	if settings.BillingMode != "daily" || settings.TaxRate != 10 ||
		settings.ClosingDay != "end" || settings.PaymentTermDays != 30 ||
		settings.Rounding != "round" {
		t.Fatalf("expected defaults for unmentioned fields, got %+v", settings)
	}
}

func TestPatch_PartialUpdateLeavesOtherFields(t *testing.T) {
	store := newStubStore()
	svc := New(store)
	siteID := uuid.New()

	// Seed a customized row.
	mode := "milestone"
	rate := 8.0
	if _, err := svc.Patch(context.Background(), siteID, Patch{BillingMode: &mode, TaxRate: &rate}); err != nil {
		t.Fatalf("seed patch failed: %v", err)
	}

	rounding := "cut"
	settings, err := svc.Patch(context.Background(), siteID, Patch{Rounding: &rounding})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}

	if settings.Rounding != "cut" {
		t.Fatalf("expected rounding cut, got %s", settings.Rounding)
	}
	if settings.BillingMode != "milestone" || settings.TaxRate != 8 {
		t.Fatalf("expected earlier customizations untouched, got %+v", settings)
	}
}

func TestPatch_RejectsNegativeValues(t *testing.T) {
	store := newStubStore()
	svc := New(store)

	rate := -1.0
	if _, err := svc.Patch(context.Background(), uuid.New(), Patch{TaxRate: &rate}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.upserts != 0 {
		t.Fatalf("expected no writes on validation failure")
	}

	days := -5
	if _, err := svc.Patch(context.Background(), uuid.New(), Patch{PaymentTermDays: &days}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEffective_DefaultsWhenAbsent(t *testing.T) {
	store := newStubStore()
	svc := New(store)

	settings, err := svc.Effective(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("effective failed: %v", err)
	}
	if settings.TaxRule != "inclusive" || settings.TaxRate != 10 {
		t.Fatalf("expected inclusive/10 defaults, got %+v", settings)
	}
}

func TestPatchCommand_RejectsUnrecognizedText(t *testing.T) {
	store := newStubStore()
	svc := New(store)

	_, _, err := svc.PatchCommand(context.Background(), uuid.New(), "こんにちは")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
