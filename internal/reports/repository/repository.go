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

// Report is the database model for a daily work report. A project has at
// most one report per work date; (project_id, work_date) is the natural key.
type Report struct {
	ID          uuid.UUID `db:"id"`
	ProjectID   uuid.UUID `db:"project_id"`
	WorkDate    time.Time `db:"work_date"`
	Note        string    `db:"note"`
	TotalManDay float64   `db:"total_man_day"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// LaborEntry is one worker's attendance line under a report. The rate in
// effect on the work date is snapshotted into DailyRateAtEntry so later rate
// changes never rewrite history. (site_id, worker_id, work_date) is the
// natural key.
type LaborEntry struct {
	ID               uuid.UUID `db:"id"`
	ReportID         uuid.UUID `db:"report_id"`
	SiteID           uuid.UUID `db:"site_id"`
	WorkerID         uuid.UUID `db:"worker_id"`
	WorkDate         time.Time `db:"work_date"`
	Unit             float64   `db:"unit"`
	DailyRateAtEntry int64     `db:"daily_rate_at_entry"`
	Amount           int64     `db:"amount"`
}

// Repository provides database operations for reports and labor entries.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new reports repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CommitWithEntries upserts the report header and all labor entries in one
// transaction. Re-submitting the same project and date overwrites the prior
// rows instead of duplicating them.
func (r *Repository) CommitWithEntries(ctx context.Context, report *Report, entries []LaborEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	reportQuery := `
		INSERT INTO reports (id, project_id, work_date, note, total_man_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (project_id, work_date) DO UPDATE SET
			note = EXCLUDED.note,
			total_man_day = EXCLUDED.total_man_day,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	if err := tx.QueryRow(ctx, reportQuery,
		report.ID, report.ProjectID, report.WorkDate, report.Note,
		report.TotalManDay, report.CreatedAt, report.UpdatedAt,
	).Scan(&report.ID); err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	entryQuery := `
		INSERT INTO labor_entries (id, report_id, site_id, worker_id, work_date, unit, daily_rate_at_entry, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (site_id, worker_id, work_date) DO UPDATE SET
			report_id = EXCLUDED.report_id,
			unit = EXCLUDED.unit,
			daily_rate_at_entry = EXCLUDED.daily_rate_at_entry,
			amount = EXCLUDED.amount`

	for i := range entries {
		e := &entries[i]
		e.ReportID = report.ID
		if _, err := tx.Exec(ctx, entryQuery,
			e.ID, e.ReportID, e.SiteID, e.WorkerID, e.WorkDate,
			e.Unit, e.DailyRateAtEntry, e.Amount,
		); err != nil {
			return fmt.Errorf("failed to upsert labor entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByProjectAndDate retrieves a report by its natural key.
func (r *Repository) GetByProjectAndDate(ctx context.Context, projectID uuid.UUID, workDate time.Time) (*Report, error) {
	var rep Report
	query := `
		SELECT id, project_id, work_date, note, total_man_day, created_at, updated_at
		FROM reports WHERE project_id = $1 AND work_date = $2`

	err := r.pool.QueryRow(ctx, query, projectID, workDate).Scan(
		&rep.ID, &rep.ProjectID, &rep.WorkDate, &rep.Note,
		&rep.TotalManDay, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("report not found")
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &rep, nil
}

// ListEntries returns the labor entries belonging to a report.
func (r *Repository) ListEntries(ctx context.Context, reportID uuid.UUID) ([]LaborEntry, error) {
	query := `
		SELECT id, report_id, site_id, worker_id, work_date, unit, daily_rate_at_entry, amount
		FROM labor_entries WHERE report_id = $1 ORDER BY worker_id`

	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labor entries: %w", err)
	}
	defer rows.Close()

	var entries []LaborEntry
	for rows.Next() {
		var e LaborEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.SiteID, &e.WorkerID,
			&e.WorkDate, &e.Unit, &e.DailyRateAtEntry, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan labor entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumEntriesForPeriod totals unit * daily_rate_at_entry over all labor
// entries for a site within [from, to). Used for progress-based invoicing.
func (r *Repository) SumEntriesForPeriod(ctx context.Context, siteID uuid.UUID, from, to time.Time) (int64, float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(unit), 0)
		FROM labor_entries
		WHERE site_id = $1 AND work_date >= $2 AND work_date < $3`

	var amount int64
	var units float64
	if err := r.pool.QueryRow(ctx, query, siteID, from, to).Scan(&amount, &units); err != nil {
		return 0, 0, fmt.Errorf("failed to sum labor entries: %w", err)
	}
	return amount, units, nil
}
