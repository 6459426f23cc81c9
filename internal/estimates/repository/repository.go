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

// Estimate is the database model for an estimate header. The tax rule and
// rounding policy in effect at commit time are stored with the totals so the
// document stays reproducible after settings change.
type Estimate struct {
	ID        uuid.UUID `db:"id"`
	ProjectID uuid.UUID `db:"project_id"`
	Title     string    `db:"title"`
	TaxRule   string    `db:"tax_rule"`
	TaxRate   float64   `db:"tax_rate"`
	Rounding  string    `db:"rounding"`
	Subtotal  int64     `db:"subtotal"`
	Tax       int64     `db:"tax"`
	Total     int64     `db:"total"`
	CreatedAt time.Time `db:"created_at"`
}

// EstimateItem is one line of an estimate.
type EstimateItem struct {
	ID          uuid.UUID `db:"id"`
	EstimateID  uuid.UUID `db:"estimate_id"`
	Position    int       `db:"position"`
	Description string    `db:"description"`
	Qty         float64   `db:"qty"`
	Unit        string    `db:"unit"`
	UnitPrice   int64     `db:"unit_price"`
	LineTotal   int64     `db:"line_total"`
}

// Repository provides database operations for estimates.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new estimates repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithItems inserts the estimate header and its items in one
// transaction so a partially written estimate can never be observed.
func (r *Repository) CreateWithItems(ctx context.Context, est *Estimate, items []EstimateItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	headerQuery := `
		INSERT INTO estimates (id, project_id, title, tax_rule, tax_rate, rounding,
			subtotal, tax, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if _, err := tx.Exec(ctx, headerQuery,
		est.ID, est.ProjectID, est.Title, est.TaxRule, est.TaxRate, est.Rounding,
		est.Subtotal, est.Tax, est.Total, est.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert estimate: %w", err)
	}

	itemQuery := `
		INSERT INTO estimate_items (id, estimate_id, position, description, qty, unit, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i := range items {
		item := &items[i]
		item.EstimateID = est.ID
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID, item.EstimateID, item.Position, item.Description,
			item.Qty, item.Unit, item.UnitPrice, item.LineTotal,
		); err != nil {
			return fmt.Errorf("failed to insert estimate item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetWithItems returns an estimate header and its items.
func (r *Repository) GetWithItems(ctx context.Context, id uuid.UUID) (*Estimate, []EstimateItem, error) {
	var est Estimate
	headerQuery := `
		SELECT id, project_id, title, tax_rule, tax_rate, rounding,
			subtotal, tax, total, created_at
		FROM estimates WHERE id = $1`

	err := r.pool.QueryRow(ctx, headerQuery, id).Scan(
		&est.ID, &est.ProjectID, &est.Title, &est.TaxRule, &est.TaxRate, &est.Rounding,
		&est.Subtotal, &est.Tax, &est.Total, &est.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound("estimate not found")
		}
		return nil, nil, fmt.Errorf("failed to get estimate: %w", err)
	}

	itemQuery := `
		SELECT id, estimate_id, position, description, qty, unit, unit_price, line_total
		FROM estimate_items WHERE estimate_id = $1 ORDER BY position`

	rows, err := r.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list estimate items: %w", err)
	}
	defer rows.Close()

	var items []EstimateItem
	for rows.Next() {
		var item EstimateItem
		if err := rows.Scan(&item.ID, &item.EstimateID, &item.Position, &item.Description,
			&item.Qty, &item.Unit, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, nil, fmt.Errorf("failed to scan estimate item: %w", err)
		}
		items = append(items, item)
	}
	return &est, items, rows.Err()
}
