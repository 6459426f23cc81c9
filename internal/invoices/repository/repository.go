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

// Invoice is the database model for an invoice header. Settings in effect at
// issue time are stored with the totals so the document stays reproducible.
type Invoice struct {
	ID            uuid.UUID `db:"id"`
	ProjectID     uuid.UUID `db:"project_id"`
	InvoiceNumber string    `db:"invoice_number"`
	PeriodFrom    time.Time `db:"period_from"`
	PeriodTo      time.Time `db:"period_to"`
	TaxRule       string    `db:"tax_rule"`
	TaxRate       float64   `db:"tax_rate"`
	Rounding      string    `db:"rounding"`
	Subtotal      int64     `db:"subtotal"`
	Tax           int64     `db:"tax"`
	Total         int64     `db:"total"`
	IssuedAt      time.Time `db:"issued_at"`
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ID          uuid.UUID `db:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id"`
	Position    int       `db:"position"`
	Description string    `db:"description"`
	Qty         float64   `db:"qty"`
	Unit        string    `db:"unit"`
	UnitPrice   int64     `db:"unit_price"`
	LineTotal   int64     `db:"line_total"`
}

// Repository provides database operations for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new invoices repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithItems allocates the invoice number and inserts header and items
// in one transaction. Numbers are per-month sequences: INV-YYYYMM-NNNN.
func (r *Repository) CreateWithItems(ctx context.Context, inv *Invoice, items []InvoiceItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	month := inv.IssuedAt.Format("200601")
	var seq int
	seqQuery := `
		SELECT COUNT(*) + 1 FROM invoices
		WHERE invoice_number LIKE 'INV-' || $1 || '-%'`
	if err := tx.QueryRow(ctx, seqQuery, month).Scan(&seq); err != nil {
		return fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	inv.InvoiceNumber = fmt.Sprintf("INV-%s-%04d", month, seq)

	headerQuery := `
		INSERT INTO invoices (id, project_id, invoice_number, period_from, period_to,
			tax_rule, tax_rate, rounding, subtotal, tax, total, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if _, err := tx.Exec(ctx, headerQuery,
		inv.ID, inv.ProjectID, inv.InvoiceNumber, inv.PeriodFrom, inv.PeriodTo,
		inv.TaxRule, inv.TaxRate, inv.Rounding, inv.Subtotal, inv.Tax, inv.Total, inv.IssuedAt,
	); err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_items (id, invoice_id, position, description, qty, unit, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i := range items {
		item := &items[i]
		item.InvoiceID = inv.ID
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID, item.InvoiceID, item.Position, item.Description,
			item.Qty, item.Unit, item.UnitPrice, item.LineTotal,
		); err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetWithItems returns an invoice header and its items.
func (r *Repository) GetWithItems(ctx context.Context, id uuid.UUID) (*Invoice, []InvoiceItem, error) {
	var inv Invoice
	headerQuery := `
		SELECT id, project_id, invoice_number, period_from, period_to,
			tax_rule, tax_rate, rounding, subtotal, tax, total, issued_at
		FROM invoices WHERE id = $1`

	err := r.pool.QueryRow(ctx, headerQuery, id).Scan(
		&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.PeriodFrom, &inv.PeriodTo,
		&inv.TaxRule, &inv.TaxRate, &inv.Rounding, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound("invoice not found")
		}
		return nil, nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	itemQuery := `
		SELECT id, invoice_id, position, description, qty, unit, unit_price, line_total
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`

	rows, err := r.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	var items []InvoiceItem
	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Position, &item.Description,
			&item.Qty, &item.Unit, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	return &inv, items, rows.Err()
}
