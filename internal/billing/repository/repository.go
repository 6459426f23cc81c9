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

// BillingSettings is the database model for per-site billing settings.
// One row per site; the site ID is the natural key.
type BillingSettings struct {
	SiteID          uuid.UUID `db:"site_id"`
	BillingMode     string    `db:"billing_mode"`
	TaxRule         string    `db:"tax_rule"`
	TaxRate         float64   `db:"tax_rate"`
	ClosingDay      string    `db:"closing_day"`
	PaymentTermDays int       `db:"payment_term_days"`
	Rounding        string    `db:"rounding"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

const settingsNotFoundMsg = "billing settings not found"

// Repository provides database operations for billing settings.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new billing settings repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get retrieves the settings row for a site.
func (r *Repository) Get(ctx context.Context, siteID uuid.UUID) (*BillingSettings, error) {
	var s BillingSettings
	query := `
		SELECT site_id, billing_mode, tax_rule, tax_rate, closing_day,
			payment_term_days, rounding, created_at, updated_at
		FROM billing_settings WHERE site_id = $1`

	err := r.pool.QueryRow(ctx, query, siteID).Scan(
		&s.SiteID, &s.BillingMode, &s.TaxRule, &s.TaxRate, &s.ClosingDay,
		&s.PaymentTermDays, &s.Rounding, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(settingsNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get billing settings: %w", err)
	}
	return &s, nil
}

// Upsert writes the full settings row keyed by site_id. Concurrent patches
// for the same site resolve on the unique constraint.
func (r *Repository) Upsert(ctx context.Context, s *BillingSettings) error {
	query := `
		INSERT INTO billing_settings (
			site_id, billing_mode, tax_rule, tax_rate, closing_day,
			payment_term_days, rounding, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (site_id) DO UPDATE SET
			billing_mode = EXCLUDED.billing_mode,
			tax_rule = EXCLUDED.tax_rule,
			tax_rate = EXCLUDED.tax_rate,
			closing_day = EXCLUDED.closing_day,
			payment_term_days = EXCLUDED.payment_term_days,
			rounding = EXCLUDED.rounding,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.pool.Exec(ctx, query,
		s.SiteID, s.BillingMode, s.TaxRule, s.TaxRate, s.ClosingDay,
		s.PaymentTermDays, s.Rounding, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert billing settings: %w", err)
	}
	return nil
}
