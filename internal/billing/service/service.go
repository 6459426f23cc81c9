// Package service implements billing settings management: defaults on first
// patch, partial updates, and free-text command parsing.
package service

import (
	"context"
	"time"

	"genba_backend/internal/billing/repository"
	"genba_backend/internal/billing/transport"
	"genba_backend/platform/apperr"

	"github.com/google/uuid"
)

// SettingsStore is the persistence boundary for billing settings.
type SettingsStore interface {
	Get(ctx context.Context, siteID uuid.UUID) (*repository.BillingSettings, error)
	Upsert(ctx context.Context, s *repository.BillingSettings) error
}

// Service provides billing settings operations.
type Service struct {
	repo SettingsStore
}

// New creates a new billing service.
func New(repo SettingsStore) *Service {
	return &Service{repo: repo}
}

// Defaults returns the documented default settings for a site that has no row.
func Defaults(siteID uuid.UUID) *repository.BillingSettings {
	now := time.Now()
	return &repository.BillingSettings{
		SiteID:          siteID,
		BillingMode:     "daily",
		TaxRule:         "inclusive",
		TaxRate:         10,
		ClosingDay:      "end",
		PaymentTermDays: 30,
		Rounding:        "round",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Effective returns the stored settings for a site, or the defaults when no
// row exists yet. Estimate and invoice commits read their tax rule through
// this method.
func (s *Service) Effective(ctx context.Context, siteID uuid.UUID) (*repository.BillingSettings, error) {
	settings, err := s.repo.Get(ctx, siteID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Defaults(siteID), nil
		}
		return nil, err
	}
	return settings, nil
}

// Patch applies a partial settings change. If no settings row exists the
// defaults are created first and the patch merged on top. Fields the patch
// does not mention are left untouched.
func (s *Service) Patch(ctx context.Context, siteID uuid.UUID, patch Patch) (*repository.BillingSettings, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	settings, err := s.repo.Get(ctx, siteID)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		settings = Defaults(siteID)
	}

	applyPatch(settings, patch)
	settings.UpdatedAt = time.Now()

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to save billing settings", err)
	}
	return settings, nil
}

// PatchCommand parses a free-text command and applies the resulting patch.
func (s *Service) PatchCommand(ctx context.Context, siteID uuid.UUID, command string) (*repository.BillingSettings, Patch, error) {
	patch := ParseCommand(command)
	if patch.IsEmpty() {
		return nil, patch, apperr.Validation("no billing settings recognized in command")
	}

	settings, err := s.Patch(ctx, siteID, patch)
	return settings, patch, err
}

// PatchFromRequest builds a patch from a structured request body.
func PatchFromRequest(req transport.PatchRequest) Patch {
	return Patch{
		BillingMode:     req.BillingMode,
		TaxRule:         req.TaxRule,
		TaxRate:         req.TaxRate,
		ClosingDay:      req.ClosingDay,
		PaymentTermDays: req.PaymentTermDays,
		Rounding:        req.Rounding,
	}
}

// ToResponse converts a settings row to its transport representation.
func ToResponse(s *repository.BillingSettings) transport.SettingsResponse {
	return transport.SettingsResponse{
		SiteID:          s.SiteID.String(),
		BillingMode:     s.BillingMode,
		TaxRule:         s.TaxRule,
		TaxRate:         s.TaxRate,
		ClosingDay:      s.ClosingDay,
		PaymentTermDays: s.PaymentTermDays,
		Rounding:        s.Rounding,
	}
}

func validatePatch(patch Patch) error {
	if patch.TaxRate != nil && *patch.TaxRate < 0 {
		return apperr.Validation("tax rate must not be negative")
	}
	if patch.PaymentTermDays != nil && *patch.PaymentTermDays < 0 {
		return apperr.Validation("payment term days must not be negative")
	}
	return nil
}

func applyPatch(settings *repository.BillingSettings, patch Patch) {
	if patch.BillingMode != nil {
		settings.BillingMode = *patch.BillingMode
	}
	if patch.TaxRule != nil {
		settings.TaxRule = *patch.TaxRule
	}
	if patch.TaxRate != nil {
		settings.TaxRate = *patch.TaxRate
	}
	if patch.ClosingDay != nil {
		settings.ClosingDay = *patch.ClosingDay
	}
	if patch.PaymentTermDays != nil {
		settings.PaymentTermDays = *patch.PaymentTermDays
	}
	if patch.Rounding != nil {
		settings.Rounding = *patch.Rounding
	}
}
