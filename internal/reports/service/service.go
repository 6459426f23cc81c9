// Package service implements daily report commits. A commit resolves each
// worker's rate as of the work date, snapshots it into the labor entry, and
// upserts everything so a re-submitted report overwrites rather than
// duplicates.
package service

import (
	"context"
	"math"
	"time"

	"genba_backend/internal/events"
	ratesvc "genba_backend/internal/rates/service"
	"genba_backend/internal/reports/repository"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

// ReportStore is the persistence boundary for report commits.
type ReportStore interface {
	CommitWithEntries(ctx context.Context, report *repository.Report, entries []repository.LaborEntry) error
	GetByProjectAndDate(ctx context.Context, projectID uuid.UUID, workDate time.Time) (*repository.Report, error)
	ListEntries(ctx context.Context, reportID uuid.UUID) ([]repository.LaborEntry, error)
}

// RateResolver resolves the daily rate in effect for a worker on a date.
type RateResolver interface {
	Resolve(ctx context.Context, workerID, siteID uuid.UUID, workDate time.Time) (ratesvc.Resolution, error)
}

// EntryInput is one worker's attendance in a commit request.
type EntryInput struct {
	WorkerID uuid.UUID
	Unit     float64
}

// CommitInput is a full report commit request. ProjectID keys the report
// row; SiteID keys the labor entries. Single-site projects pass the same
// value for both, and a zero ProjectID falls back to SiteID.
type CommitInput struct {
	ProjectID uuid.UUID
	SiteID    uuid.UUID
	WorkDate  time.Time
	Note      string
	Entries   []EntryInput
}

// CommitResult is returned after a successful commit.
type CommitResult struct {
	ReportID    uuid.UUID `json:"reportId"`
	TotalManDay float64   `json:"totalManDay"`
}

// Service coordinates rate resolution and persistence for daily reports.
type Service struct {
	store    ReportStore
	resolver RateResolver
	bus      events.Bus
	log      *logger.Logger
}

// New creates the reports service.
func New(store ReportStore, resolver RateResolver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, resolver: resolver, bus: bus, log: log}
}

// Commit upserts the report for (project, work date) together with its labor
// entries. Rates are resolved one worker at a time in the order the entries
// were submitted; a worker without any applicable rate gets a zero-amount
// entry and a warning rather than failing the whole report.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	if len(in.Entries) == 0 {
		return nil, apperr.Validation("at least one labor entry is required")
	}
	for _, e := range in.Entries {
		if e.Unit != 0.5 && e.Unit != 1 {
			return nil, apperr.Validation("unit must be 0.5 or 1")
		}
	}

	projectID := in.ProjectID
	if projectID == uuid.Nil {
		projectID = in.SiteID
	}

	now := time.Now()
	var totalManDay float64
	entries := make([]repository.LaborEntry, 0, len(in.Entries))

	for _, e := range in.Entries {
		res, err := s.resolver.Resolve(ctx, e.WorkerID, in.SiteID, in.WorkDate)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to resolve worker rate", err)
		}
		if res.Missing {
			s.log.Warn("no rate configured for worker, committing zero amount",
				"worker_id", e.WorkerID.String(),
				"site_id", in.SiteID.String(),
			)
		}

		totalManDay += e.Unit
		entries = append(entries, repository.LaborEntry{
			ID:               uuid.New(),
			SiteID:           in.SiteID,
			WorkerID:         e.WorkerID,
			WorkDate:         in.WorkDate,
			Unit:             e.Unit,
			DailyRateAtEntry: res.DailyRate,
			Amount:           int64(math.Round(e.Unit * float64(res.DailyRate))),
		})
	}

	report := &repository.Report{
		ID:          uuid.New(),
		ProjectID:   projectID,
		WorkDate:    in.WorkDate,
		Note:        in.Note,
		TotalManDay: totalManDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CommitWithEntries(ctx, report, entries); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit report", err)
	}

	s.bus.Publish(ctx, events.ReportCommitted{
		BaseEvent:   events.NewBaseEvent(),
		ReportID:    report.ID,
		ProjectID:   projectID,
		WorkDate:    in.WorkDate.Format("2006-01-02"),
		TotalManDay: totalManDay,
		WorkerCount: len(entries),
	})

	return &CommitResult{ReportID: report.ID, TotalManDay: totalManDay}, nil
}

// Get returns the report for a project and work date along with its entries.
func (s *Service) Get(ctx context.Context, projectID uuid.UUID, workDate time.Time) (*repository.Report, []repository.LaborEntry, error) {
	report, err := s.store.GetByProjectAndDate(ctx, projectID, workDate)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.store.ListEntries(ctx, report.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "failed to load labor entries", err)
	}
	return report, entries, nil
}
