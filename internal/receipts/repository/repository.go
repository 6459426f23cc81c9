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

// OCR status values for a receipt.
const (
	OCRStatusPending = "pending"
	OCRStatusDone    = "done"
	OCRStatusFailed  = "failed"
)

// Receipt is the database model for a captured receipt, delivery slip or
// other site document. Amount is integer yen. Vendor and OccurredOn start
// empty and are filled in by the OCR worker when it can extract them.
type Receipt struct {
	ID          uuid.UUID  `db:"id"`
	ProjectID   uuid.UUID  `db:"project_id"`
	Kind        string     `db:"kind"`
	Description string     `db:"description"`
	Amount      int64      `db:"amount"`
	Currency    string     `db:"currency"`
	Account     string     `db:"account"`
	Vendor      *string    `db:"vendor"`
	FileRefs    []string   `db:"file_refs"`
	ContentType string     `db:"content_type"`
	OCRStatus   string     `db:"ocr_status"`
	OccurredOn  *time.Time `db:"occurred_on"`
	CreatedAt   time.Time  `db:"created_at"`
}

// OCRPatch carries the fields the OCR worker may fill in on a receipt. Nil
// fields leave the stored value untouched.
type OCRPatch struct {
	Vendor     *string
	Amount     *int64
	OccurredOn *time.Time
}

// Repository provides database operations for receipts.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new receipts repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes a new receipt row.
func (r *Repository) Insert(ctx context.Context, rec *Receipt) error {
	query := `
		INSERT INTO receipts (id, project_id, kind, description, amount, currency,
			account, vendor, file_refs, content_type, ocr_status, occurred_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if _, err := r.pool.Exec(ctx, query,
		rec.ID, rec.ProjectID, rec.Kind, rec.Description, rec.Amount, rec.Currency,
		rec.Account, rec.Vendor, rec.FileRefs, rec.ContentType, rec.OCRStatus, rec.OccurredOn, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a receipt.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	var rec Receipt
	query := `
		SELECT id, project_id, kind, description, amount, currency,
			account, vendor, file_refs, content_type, ocr_status, occurred_on, created_at
		FROM receipts WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.ProjectID, &rec.Kind, &rec.Description, &rec.Amount, &rec.Currency,
		&rec.Account, &rec.Vendor, &rec.FileRefs, &rec.ContentType, &rec.OCRStatus, &rec.OccurredOn, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("receipt not found")
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return &rec, nil
}

// UpdateOCRResult records the worker's outcome for a receipt. Patch fields
// fill in only what is present; the stored amount and vendor are never
// cleared.
func (r *Repository) UpdateOCRResult(ctx context.Context, id uuid.UUID, status string, patch OCRPatch) error {
	query := `
		UPDATE receipts SET
			ocr_status = $2,
			vendor = COALESCE($3, vendor),
			amount = COALESCE($4, amount),
			occurred_on = COALESCE($5, occurred_on)
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status, patch.Vendor, patch.Amount, patch.OccurredOn)
	if err != nil {
		return fmt.Errorf("failed to update receipt ocr result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("receipt not found")
	}
	return nil
}

// ListByProject returns the receipts for a site, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Receipt, error) {
	query := `
		SELECT id, project_id, kind, description, amount, currency,
			account, vendor, file_refs, content_type, ocr_status, occurred_on, created_at
		FROM receipts WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		var rec Receipt
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Kind, &rec.Description, &rec.Amount, &rec.Currency,
			&rec.Account, &rec.Vendor, &rec.FileRefs, &rec.ContentType, &rec.OCRStatus, &rec.OccurredOn, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}
