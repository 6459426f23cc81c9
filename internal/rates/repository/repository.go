package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genba_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Rate scopes. A site-scoped rate overrides the company-wide rate for that
// worker at that site.
const (
	ScopeSite    = "site"
	ScopeCompany = "company"
)

// WorkerRate is the database model for a worker's daily rate.
// SiteID is set iff Scope is "site".
type WorkerRate struct {
	ID            uuid.UUID  `db:"id"`
	WorkerID      uuid.UUID  `db:"worker_id"`
	Scope         string     `db:"scope"`
	SiteID        *uuid.UUID `db:"site_id"`
	DailyRate     int64      `db:"daily_rate"`
	EffectiveFrom time.Time  `db:"effective_from"`
	CreatedAt     time.Time  `db:"created_at"`
}

const rateNotFoundMsg = "worker rate not found"

// Repository provides database operations for worker rates.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new rates repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LatestSiteRate runs the as-of query for a site-scoped rate: the most recent
// rate with effective_from on or before the given date.
func (r *Repository) LatestSiteRate(ctx context.Context, workerID, siteID uuid.UUID, asOf time.Time) (*WorkerRate, error) {
	query := `
		SELECT id, worker_id, scope, site_id, daily_rate, effective_from, created_at
		FROM worker_rates
		WHERE worker_id = $1 AND scope = 'site' AND site_id = $2 AND effective_from <= $3
		ORDER BY effective_from DESC
		LIMIT 1`

	return r.scanOne(r.pool.QueryRow(ctx, query, workerID, siteID, asOf))
}

// LatestCompanyRate runs the as-of query for the company-wide rate.
func (r *Repository) LatestCompanyRate(ctx context.Context, workerID uuid.UUID, asOf time.Time) (*WorkerRate, error) {
	query := `
		SELECT id, worker_id, scope, site_id, daily_rate, effective_from, created_at
		FROM worker_rates
		WHERE worker_id = $1 AND scope = 'company' AND effective_from <= $2
		ORDER BY effective_from DESC
		LIMIT 1`

	return r.scanOne(r.pool.QueryRow(ctx, query, workerID, asOf))
}

// Insert adds a new rate row.
func (r *Repository) Insert(ctx context.Context, rate *WorkerRate) error {
	query := `
		INSERT INTO worker_rates (id, worker_id, scope, site_id, daily_rate, effective_from, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.pool.Exec(ctx, query,
		rate.ID, rate.WorkerID, rate.Scope, rate.SiteID,
		rate.DailyRate, rate.EffectiveFrom, rate.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert worker rate: %w", err)
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (*WorkerRate, error) {
	var rate WorkerRate
	err := row.Scan(
		&rate.ID, &rate.WorkerID, &rate.Scope, &rate.SiteID,
		&rate.DailyRate, &rate.EffectiveFrom, &rate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(rateNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to query worker rate: %w", err)
	}
	return &rate, nil
}
