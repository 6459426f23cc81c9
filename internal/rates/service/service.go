// Package service resolves the applicable daily rate for a worker on a given
// date. Site-scoped rates are strictly preferred over company-scoped ones,
// even when the company rate is more recent; rates effective after the target
// date are never selected.
package service

import (
	"context"
	"time"

	"genba_backend/internal/rates/repository"
	"genba_backend/platform/apperr"

	"github.com/google/uuid"
)

// RateReader is the persistence boundary for as-of rate lookups.
type RateReader interface {
	LatestSiteRate(ctx context.Context, workerID, siteID uuid.UUID, asOf time.Time) (*repository.WorkerRate, error)
	LatestCompanyRate(ctx context.Context, workerID uuid.UUID, asOf time.Time) (*repository.WorkerRate, error)
}

// RateWriter is the persistence boundary for recording new rates.
type RateWriter interface {
	Insert(ctx context.Context, rate *repository.WorkerRate) error
}

// Resolution is the outcome of a rate lookup. Missing is set when neither a
// site nor a company rate exists; the rate is then 0 and the caller may flag
// a data-quality warning, but the lookup itself is not an error.
type Resolution struct {
	DailyRate int64  `json:"dailyRate"`
	Scope     string `json:"scope,omitempty"`
	Missing   bool   `json:"missing,omitempty"`
}

// Resolver resolves worker rates with the site-over-company fallback.
type Resolver struct {
	reader RateReader
}

// NewResolver creates a rate resolver.
func NewResolver(reader RateReader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve returns the applicable daily rate for the worker at the site on
// the given work date.
func (r *Resolver) Resolve(ctx context.Context, workerID, siteID uuid.UUID, workDate time.Time) (Resolution, error) {
	siteRate, err := r.reader.LatestSiteRate(ctx, workerID, siteID, workDate)
	if err == nil {
		return Resolution{DailyRate: siteRate.DailyRate, Scope: repository.ScopeSite}, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return Resolution{}, err
	}

	companyRate, err := r.reader.LatestCompanyRate(ctx, workerID, workDate)
	if err == nil {
		return Resolution{DailyRate: companyRate.DailyRate, Scope: repository.ScopeCompany}, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return Resolution{}, err
	}

	return Resolution{DailyRate: 0, Missing: true}, nil
}

// Service provides rate management on top of the resolver.
type Service struct {
	*Resolver
	writer RateWriter
}

// New creates the rates service.
func New(reader RateReader, writer RateWriter) *Service {
	return &Service{Resolver: NewResolver(reader), writer: writer}
}

// Create records a new rate row.
func (s *Service) Create(ctx context.Context, workerID uuid.UUID, scope string, siteID *uuid.UUID, dailyRate int64, effectiveFrom time.Time) (*repository.WorkerRate, error) {
	if dailyRate < 0 {
		return nil, apperr.Validation("daily rate must not be negative")
	}
	switch scope {
	case repository.ScopeSite:
		if siteID == nil {
			return nil, apperr.Validation("site id is required for site-scoped rates")
		}
	case repository.ScopeCompany:
		if siteID != nil {
			return nil, apperr.Validation("site id must be empty for company-scoped rates")
		}
	default:
		return nil, apperr.Validation("scope must be site or company")
	}

	rate := &repository.WorkerRate{
		ID:            uuid.New(),
		WorkerID:      workerID,
		Scope:         scope,
		SiteID:        siteID,
		DailyRate:     dailyRate,
		EffectiveFrom: effectiveFrom,
		CreatedAt:     time.Now(),
	}
	if err := s.writer.Insert(ctx, rate); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to save worker rate", err)
	}
	return rate, nil
}
