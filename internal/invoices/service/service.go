// Package service implements progress-based invoice drafting and two-phase
// issue: Draft previews totals without persisting anything, Commit allocates
// the invoice number and writes the document.
package service

import (
	"context"
	"fmt"
	"time"

	billingrepo "genba_backend/internal/billing/repository"
	"genba_backend/internal/events"
	"genba_backend/internal/finance"
	"genba_backend/internal/invoices/repository"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// InvoiceStore is the persistence boundary for invoices.
type InvoiceStore interface {
	CreateWithItems(ctx context.Context, inv *repository.Invoice, items []repository.InvoiceItem) error
	GetWithItems(ctx context.Context, id uuid.UUID) (*repository.Invoice, []repository.InvoiceItem, error)
}

// SettingsProvider resolves the effective billing settings for a site.
type SettingsProvider interface {
	Effective(ctx context.Context, siteID uuid.UUID) (*billingrepo.BillingSettings, error)
}

// LaborSummer totals committed labor for a site over [from, to).
type LaborSummer interface {
	SumEntriesForPeriod(ctx context.Context, siteID uuid.UUID, from, to time.Time) (amount int64, units float64, err error)
}

// ItemInput is one line in a commit request.
type ItemInput struct {
	Description string
	Qty         float64
	Unit        string
	UnitPrice   int64
}

// Draft is a non-persisted invoice preview.
type Draft struct {
	SiteID     uuid.UUID      `json:"siteId"`
	PeriodFrom string         `json:"periodFrom"`
	PeriodTo   string         `json:"periodTo"`
	Items      []ItemInput    `json:"items"`
	Totals     finance.Totals `json:"totals"`
}

// CommitInput is a full invoice issue request. RoundingOverride, when set,
// replaces the site's configured rounding policy for this document only.
type CommitInput struct {
	SiteID           uuid.UUID
	PeriodFrom       time.Time
	PeriodTo         time.Time
	Items            []ItemInput
	RoundingOverride string
}

// CommitResult is returned after a successful issue.
type CommitResult struct {
	InvoiceID     uuid.UUID      `json:"invoiceId"`
	InvoiceNumber string         `json:"invoiceNumber"`
	Totals        finance.Totals `json:"totals"`
}

// Service coordinates labor aggregation, settings lookup and persistence
// for invoices.
type Service struct {
	store    InvoiceStore
	settings SettingsProvider
	labor    LaborSummer
	bus      events.Bus
	log      *logger.Logger
}

// New creates the invoices service.
func New(store InvoiceStore, settings SettingsProvider, labor LaborSummer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, settings: settings, labor: labor, bus: bus, log: log}
}

// currentMonth returns the first day of now's calendar month and the first
// day of the next one.
func currentMonth(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

// DraftFromProgress builds a preview invoice from the labor committed for a
// site in the given period. A zero from/to defaults to the current calendar
// month. The labor amount becomes one synthetic line labeled with the period.
func (s *Service) DraftFromProgress(ctx context.Context, siteID uuid.UUID, from, to time.Time) (*Draft, error) {
	if from.IsZero() || to.IsZero() {
		from, to = currentMonth(time.Now())
	}
	if !to.After(from) {
		return nil, apperr.Validation("period end must be after period start")
	}

	var (
		amount   int64
		units    float64
		settings *billingrepo.BillingSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		amount, units, err = s.labor.SumEntriesForPeriod(gctx, siteID, from, to)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to total labor entries", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.Effective(gctx, siteID)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to load billing settings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	periodEnd := to.AddDate(0, 0, -1)
	items := []ItemInput{{
		Description: fmt.Sprintf("出来高精算 %s〜%s (%.1f人日)",
			from.Format("2006-01-02"), periodEnd.Format("2006-01-02"), units),
		Qty:       1,
		Unit:      "式",
		UnitPrice: amount,
	}}

	totals := finance.Calculate(
		finance.ParseTaxRule(settings.TaxRule),
		settings.TaxRate,
		finance.ParseRounding(settings.Rounding),
		toLineItems(items),
	)

	return &Draft{
		SiteID:     siteID,
		PeriodFrom: from.Format("2006-01-02"),
		PeriodTo:   periodEnd.Format("2006-01-02"),
		Items:      items,
		Totals:     totals,
	}, nil
}

// Commit issues an invoice from the given lines. The site's billing settings
// supply the tax rule and rate; the rounding policy may be overridden per
// document.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("at least one invoice item is required")
	}
	for _, item := range in.Items {
		if item.Qty <= 0 {
			return nil, apperr.Validation("item qty must be positive")
		}
	}

	settings, err := s.settings.Effective(ctx, in.SiteID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load billing settings", err)
	}

	rounding := finance.ParseRounding(settings.Rounding)
	if in.RoundingOverride != "" {
		rounding = finance.ParseRounding(in.RoundingOverride)
	}
	rule := finance.ParseTaxRule(settings.TaxRule)

	lines := toLineItems(in.Items)
	totals := finance.Calculate(rule, settings.TaxRate, rounding, lines)
	lineTotals := finance.LineTotals(lines)

	now := time.Now()
	from, to := in.PeriodFrom, in.PeriodTo
	if from.IsZero() || to.IsZero() {
		from, to = currentMonth(now)
	}

	inv := &repository.Invoice{
		ID:         uuid.New(),
		ProjectID:  in.SiteID,
		PeriodFrom: from,
		PeriodTo:   to,
		TaxRule:    string(rule),
		TaxRate:    settings.TaxRate,
		Rounding:   string(rounding),
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
		IssuedAt:   now,
	}

	items := make([]repository.InvoiceItem, 0, len(in.Items))
	for i, item := range in.Items {
		items = append(items, repository.InvoiceItem{
			ID:          uuid.New(),
			Position:    i + 1,
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotals[i],
		})
	}

	if err := s.store.CreateWithItems(ctx, inv, items); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to save invoice", err)
	}

	s.bus.Publish(ctx, events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     inv.ID,
		ProjectID:     in.SiteID,
		InvoiceNumber: inv.InvoiceNumber,
		PeriodFrom:    from.Format("2006-01-02"),
		PeriodTo:      to.AddDate(0, 0, -1).Format("2006-01-02"),
		Total:         totals.Total,
	})

	return &CommitResult{InvoiceID: inv.ID, InvoiceNumber: inv.InvoiceNumber, Totals: totals}, nil
}

// Get returns an invoice with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Invoice, []repository.InvoiceItem, error) {
	return s.store.GetWithItems(ctx, id)
}

func toLineItems(items []ItemInput) []finance.LineItem {
	out := make([]finance.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, finance.LineItem{
			Description: item.Description,
			Qty:         item.Qty,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}
