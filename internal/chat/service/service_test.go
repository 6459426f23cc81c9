package service

import (
	"context"
	"testing"

	billingrepo "genba_backend/internal/billing/repository"
	billingsvc "genba_backend/internal/billing/service"
	"genba_backend/internal/chat/blocks"
	"genba_backend/internal/chat/dispatcher"
	"genba_backend/internal/chat/intent"
	"genba_backend/internal/events"
	"genba_backend/internal/telemetry"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

type stubBilling struct {
	settings *billingrepo.BillingSettings
	err      error
	command  string
}

func (s *stubBilling) PatchCommand(_ context.Context, siteID uuid.UUID, command string) (*billingrepo.BillingSettings, billingsvc.Patch, error) {
	s.command = command
	if s.err != nil {
		return nil, billingsvc.Patch{}, s.err
	}
	if s.settings != nil {
		return s.settings, billingsvc.Patch{}, nil
	}
	return billingsvc.Defaults(siteID), billingsvc.Patch{}, nil
}

type stubTracker struct {
	events []telemetry.Event
}

func (s *stubTracker) Track(_ context.Context, event telemetry.Event) {
	s.events = append(s.events, event)
}

func testService(billing BillingPatcher) (*Service, *stubTracker) {
	log := logger.New("development")
	tracker := &stubTracker{}
	disp := dispatcher.New(nil, true, events.NewInMemoryBus(log), log)
	return New(intent.New(), disp, billing, tracker, events.NewInMemoryBus(log), log), tracker
}

func hasBlockType(list []blocks.Block, t blocks.Type) bool {
	for _, b := range list {
		if b.Type == t {
			return true
		}
	}
	return false
}

func TestHandleMessage_ReportIntentRendersForm(t *testing.T) {
	svc, tracker := testService(&stubBilling{})

	result, err := svc.HandleMessage(context.Background(), MessageInput{
		UserID: uuid.New(),
		Text:   "今日の日報を書きたい",
	})
	if err != nil {
		t.Fatalf("handle message failed: %v", err)
	}
	if result.Intent.Intent != intent.TagCreateReport {
		t.Fatalf("expected create_report intent, got %s", result.Intent.Intent)
	}
	if !hasBlockType(result.Blocks, blocks.TypeForm) {
		t.Fatalf("expected form block, got %+v", result.Blocks)
	}
	if len(tracker.events) != 1 || tracker.events[0].Name != "chat.message" {
		t.Fatalf("expected one chat.message telemetry event, got %+v", tracker.events)
	}
}

func TestHandleMessage_UnknownIntentRendersSuggestions(t *testing.T) {
	svc, _ := testService(&stubBilling{})

	result, err := svc.HandleMessage(context.Background(), MessageInput{
		UserID: uuid.New(),
		Text:   "こんにちは",
	})
	if err != nil {
		t.Fatalf("handle message failed: %v", err)
	}
	if result.Intent.Intent != intent.TagUnknown {
		t.Fatalf("expected unknown intent, got %s", result.Intent.Intent)
	}
	if !hasBlockType(result.Blocks, blocks.TypeSuggest) {
		t.Fatalf("expected suggest block, got %+v", result.Blocks)
	}
}

func TestHandleMessage_NegativeHitAsksForConfirmation(t *testing.T) {
	svc, _ := testService(&stubBilling{})

	result, err := svc.HandleMessage(context.Background(), MessageInput{
		UserID: uuid.New(),
		Text:   "先週の日報を見せて",
	})
	if err != nil {
		t.Fatalf("handle message failed: %v", err)
	}
	if !result.Intent.NeedsConfirmation {
		t.Fatalf("expected confirmation request, got %+v", result.Intent)
	}
	if !hasBlockType(result.Blocks, blocks.TypeSuggest) {
		t.Fatalf("expected confirmation suggestions, got %+v", result.Blocks)
	}
}

func TestHandleMessage_BillingCommandAppliedWhenSiteSelected(t *testing.T) {
	siteID := uuid.New()
	settings := billingsvc.Defaults(siteID)
	settings.TaxRule = "exclusive"
	billing := &stubBilling{settings: settings}
	svc, _ := testService(billing)

	result, err := svc.HandleMessage(context.Background(), MessageInput{
		UserID: uuid.New(),
		SiteID: &siteID,
		Text:   "この現場は税抜にしてね",
	})
	if err != nil {
		t.Fatalf("handle message failed: %v", err)
	}
	if result.Intent.Intent != intent.TagSetBillingMode {
		t.Fatalf("expected set_billing_mode intent, got %s", result.Intent.Intent)
	}
	if billing.command != "この現場は税抜にしてね" {
		t.Fatalf("expected raw text forwarded to billing, got %q", billing.command)
	}
	if !hasBlockType(result.Blocks, blocks.TypeStats) {
		t.Fatalf("expected stats block with new settings, got %+v", result.Blocks)
	}
}

func TestHandleMessage_BillingCommandWithoutSiteAsksForSite(t *testing.T) {
	svc, _ := testService(&stubBilling{})

	result, err := svc.HandleMessage(context.Background(), MessageInput{
		UserID: uuid.New(),
		Text:   "税込にして",
	})
	if err != nil {
		t.Fatalf("handle message failed: %v", err)
	}
	if hasBlockType(result.Blocks, blocks.TypeStats) {
		t.Fatalf("expected no settings change without a site, got %+v", result.Blocks)
	}
}

func TestHandleMessage_BillingValidationErrorRendersGuidance(t *testing.T) {
	siteID := uuid.New()
	billing := &stubBilling{err: apperr.Validation("no billing settings recognized in command")}
	svc, _ := testService(billing)

	result, err := svc.HandleMessage(context.Background(), MessageInput{
		UserID: uuid.New(),
		SiteID: &siteID,
		Text:   "税率を変えたい",
	})
	if err != nil {
		t.Fatalf("expected guidance, not error: %v", err)
	}
	if !hasBlockType(result.Blocks, blocks.TypeText) {
		t.Fatalf("expected guidance text, got %+v", result.Blocks)
	}
}

func TestDispatchTool_TracksTelemetry(t *testing.T) {
	svc, tracker := testService(&stubBilling{})

	result, err := svc.DispatchTool(context.Background(), uuid.New(), dispatcher.ActionExportCSV, nil)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if result.Kind != dispatcher.KindCSV {
		t.Fatalf("expected csv result, got %s", result.Kind)
	}
	if len(tracker.events) != 1 || tracker.events[0].Name != "chat.tool" {
		t.Fatalf("expected chat.tool telemetry event, got %+v", tracker.events)
	}
}

func TestDispatchTool_UnknownActionFails(t *testing.T) {
	svc, _ := testService(&stubBilling{})

	if _, err := svc.DispatchTool(context.Background(), uuid.New(), "rm_rf", nil); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
