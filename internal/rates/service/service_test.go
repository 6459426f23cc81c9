package service

import (
	"context"
	"testing"
	"time"

	"genba_backend/internal/rates/repository"
	"genba_backend/platform/apperr"

	"github.com/google/uuid"
)

// stubReader replays the as-of query logic over an in-memory rate list.
type stubReader struct {
	rates []repository.WorkerRate
}

func (s *stubReader) LatestSiteRate(_ context.Context, workerID, siteID uuid.UUID, asOf time.Time) (*repository.WorkerRate, error) {
	return s.latest(func(r repository.WorkerRate) bool {
		return r.WorkerID == workerID && r.Scope == repository.ScopeSite &&
			r.SiteID != nil && *r.SiteID == siteID
	}, asOf)
}

func (s *stubReader) LatestCompanyRate(_ context.Context, workerID uuid.UUID, asOf time.Time) (*repository.WorkerRate, error) {
	return s.latest(func(r repository.WorkerRate) bool {
		return r.WorkerID == workerID && r.Scope == repository.ScopeCompany
	}, asOf)
}

func (s *stubReader) latest(match func(repository.WorkerRate) bool, asOf time.Time) (*repository.WorkerRate, error) {
	var best *repository.WorkerRate
	for i := range s.rates {
		r := s.rates[i]
		if !match(r) || r.EffectiveFrom.After(asOf) {
			continue
		}
		if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = &s.rates[i]
		}
	}
	if best == nil {
		return nil, apperr.NotFound("worker rate not found")
	}
	return best, nil
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolve_SitePreferredOverNewerCompanyRate(t *testing.T) {
	workerID := uuid.New()
	siteID := uuid.New()

	reader := &stubReader{rates: []repository.WorkerRate{
		{WorkerID: workerID, Scope: repository.ScopeSite, SiteID: &siteID, DailyRate: 18000, EffectiveFrom: date("2024-01-01")},
		{WorkerID: workerID, Scope: repository.ScopeCompany, DailyRate: 20000, EffectiveFrom: date("2024-06-01")},
	}}
	resolver := NewResolver(reader)

	res, err := resolver.Resolve(context.Background(), workerID, siteID, date("2024-07-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.DailyRate != 18000 {
		t.Fatalf("expected site rate 18000 despite newer company rate, got %d", res.DailyRate)
	}
	if res.Scope != repository.ScopeSite {
		t.Fatalf("expected site scope, got %s", res.Scope)
	}
}

func TestResolve_CompanyFallback(t *testing.T) {
	workerID := uuid.New()
	siteID := uuid.New()

	reader := &stubReader{rates: []repository.WorkerRate{
		{WorkerID: workerID, Scope: repository.ScopeCompany, DailyRate: 15000, EffectiveFrom: date("2024-01-01")},
	}}
	resolver := NewResolver(reader)

	res, err := resolver.Resolve(context.Background(), workerID, siteID, date("2024-07-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.DailyRate != 15000 || res.Scope != repository.ScopeCompany {
		t.Fatalf("expected company fallback 15000, got %+v", res)
	}
}

func TestResolve_FutureRatesNeverSelected(t *testing.T) {
	workerID := uuid.New()
	siteID := uuid.New()

	reader := &stubReader{rates: []repository.WorkerRate{
		{WorkerID: workerID, Scope: repository.ScopeSite, SiteID: &siteID, DailyRate: 25000, EffectiveFrom: date("2024-12-01")},
		{WorkerID: workerID, Scope: repository.ScopeCompany, DailyRate: 14000, EffectiveFrom: date("2024-01-01")},
	}}
	resolver := NewResolver(reader)

	res, err := resolver.Resolve(context.Background(), workerID, siteID, date("2024-07-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.DailyRate != 14000 {
		t.Fatalf("expected future site rate to be skipped, got %+v", res)
	}
}

func TestResolve_MostRecentEffectiveWins(t *testing.T) {
	workerID := uuid.New()
	siteID := uuid.New()

	reader := &stubReader{rates: []repository.WorkerRate{
		{WorkerID: workerID, Scope: repository.ScopeSite, SiteID: &siteID, DailyRate: 16000, EffectiveFrom: date("2024-01-01")},
		{WorkerID: workerID, Scope: repository.ScopeSite, SiteID: &siteID, DailyRate: 17000, EffectiveFrom: date("2024-04-01")},
	}}
	resolver := NewResolver(reader)

	res, err := resolver.Resolve(context.Background(), workerID, siteID, date("2024-07-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.DailyRate != 17000 {
		t.Fatalf("expected most recent effective rate, got %+v", res)
	}
}

func TestResolve_MissingRateIsZeroNotError(t *testing.T) {
	resolver := NewResolver(&stubReader{})

	res, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New(), date("2024-07-01"))
	if err != nil {
		t.Fatalf("expected no error for missing rate, got %v", err)
	}
	if res.DailyRate != 0 || !res.Missing {
		t.Fatalf("expected zero rate with missing flag, got %+v", res)
	}
}
