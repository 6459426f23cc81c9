// Package exports serves CSV downloads of labor entries for office-side
// spreadsheets. The column set matches what the chat export tool returns so
// both paths open identically in Excel.
package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LaborRow is one exported labor entry line.
type LaborRow struct {
	WorkDate   time.Time
	WorkerName string
	Unit       float64
	Amount     int64
}

// Repository reads labor entries for export.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new exports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListLaborRows returns labor entries for a site in [from, to), joined with
// worker display names, ordered by date then worker.
func (r *Repository) ListLaborRows(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]LaborRow, error) {
	query := `
		SELECT le.work_date, COALESCE(w.display_name, le.worker_id::text), le.unit, le.amount
		FROM labor_entries le
		LEFT JOIN workers w ON w.id = le.worker_id
		WHERE le.site_id = $1 AND le.work_date >= $2 AND le.work_date < $3
		ORDER BY le.work_date, COALESCE(w.display_name, le.worker_id::text)`

	rows, err := r.pool.Query(ctx, query, siteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list labor rows: %w", err)
	}
	defer rows.Close()

	var out []LaborRow
	for rows.Next() {
		var row LaborRow
		if err := rows.Scan(&row.WorkDate, &row.WorkerName, &row.Unit, &row.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan labor row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
