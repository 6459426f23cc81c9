// Package service implements the chat turn: classify the message, apply any
// directly-actionable intent, and render the reply as UI blocks.
package service

import (
	"context"
	"fmt"
	"time"

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

// BillingPatcher applies billing commands recognized in chat.
type BillingPatcher interface {
	PatchCommand(ctx context.Context, siteID uuid.UUID, command string) (*billingrepo.BillingSettings, billingsvc.Patch, error)
}

// Tracker records telemetry without ever failing the caller.
type Tracker interface {
	Track(ctx context.Context, event telemetry.Event)
}

// MessageInput is one inbound chat message.
type MessageInput struct {
	UserID uuid.UUID
	SiteID *uuid.UUID
	Text   string
}

// MessageResult is the rendered chat turn.
type MessageResult struct {
	Intent intent.Result  `json:"intent"`
	Blocks []blocks.Block `json:"blocks"`
}

// Service coordinates classification, direct intent execution and block
// rendering for the chat surface.
type Service struct {
	classifier *intent.Classifier
	dispatcher *dispatcher.Dispatcher
	billing    BillingPatcher
	tracker    Tracker
	bus        events.Bus
	log        *logger.Logger
}

// New creates the chat service.
func New(classifier *intent.Classifier, disp *dispatcher.Dispatcher, billing BillingPatcher, tracker Tracker, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		classifier: classifier,
		dispatcher: disp,
		billing:    billing,
		tracker:    tracker,
		bus:        bus,
		log:        log,
	}
}

// HandleMessage runs one chat turn.
func (s *Service) HandleMessage(ctx context.Context, in MessageInput) (*MessageResult, error) {
	result := s.classifier.Parse(in.Text)

	s.log.IntentEvent(string(result.Intent), result.Confidence, result.NeedsConfirmation)
	s.tracker.Track(ctx, telemetry.Event{
		Name:   "chat.message",
		UserID: in.UserID,
		SiteID: in.SiteID,
		Properties: map[string]any{
			"intent":             string(result.Intent),
			"confidence":         result.Confidence,
			"needs_confirmation": result.NeedsConfirmation,
		},
	})
	s.bus.Publish(ctx, events.IntentClassified{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     in.UserID,
		SiteID:     in.SiteID,
		Intent:     result.Intent,
		Confidence: result.Confidence,
	})

	var rendered []blocks.Block
	if result.NeedsConfirmation {
		rendered = s.confirmationBlocks(result)
	} else {
		rendered = s.intentBlocks(ctx, in, result)
	}

	return &MessageResult{Intent: result, Blocks: rendered}, nil
}

// DispatchTool executes one tool action on behalf of the chat surface.
func (s *Service) DispatchTool(ctx context.Context, userID uuid.UUID, action string, params map[string]string) (dispatcher.ToolResult, error) {
	result, err := s.dispatcher.Dispatch(ctx, userID, action, params)
	if err != nil {
		return dispatcher.ToolResult{}, err
	}

	s.tracker.Track(ctx, telemetry.Event{
		Name:   "chat.tool",
		UserID: userID,
		Properties: map[string]any{
			"action": action,
			"result": string(result.Kind),
		},
	})
	return result, nil
}

// confirmationBlocks asks the user to confirm a low-confidence hit instead
// of acting on it.
func (s *Service) confirmationBlocks(result intent.Result) []blocks.Block {
	return []blocks.Block{
		blocks.Text(fmt.Sprintf("「%s」の操作でよろしいですか？", intentLabel(result.Intent))),
		blocks.Suggest(
			blocks.ActionItem{Label: "はい、" + intentLabel(result.Intent), Params: map[string]string{"intent": string(result.Intent)}},
			blocks.ActionItem{Label: "いいえ、別の操作"},
		),
	}
}

func (s *Service) intentBlocks(ctx context.Context, in MessageInput, result intent.Result) []blocks.Block {
	switch result.Intent {
	case intent.TagCreateReport:
		today := time.Now().Format("2006-01-02")
		return []blocks.Block{
			blocks.Text("本日の日報を作成します。"),
			blocks.Form("report_commit",
				blocks.FormField{Name: "workDate", Label: "作業日", Value: today},
				blocks.FormField{Name: "note", Label: "作業内容"},
				blocks.FormField{Name: "workers", Label: "出面"},
			),
		}

	case intent.TagUploadDoc:
		return []blocks.Block{
			blocks.Text("領収書・書類をアップロードしてください。"),
			blocks.Actions(blocks.ActionItem{
				Label:  "ファイルを選択",
				Action: dispatcher.ActionOpenPage,
				Params: map[string]string{"page": "/receipts/upload"},
			}),
		}

	case intent.TagCreateInvoice:
		return []blocks.Block{
			blocks.Text("今月の出来高から請求書を作成します。"),
			blocks.Actions(blocks.ActionItem{
				Label:  "請求書ドラフトを作成",
				Action: dispatcher.ActionInvoiceCreate,
			}),
		}

	case intent.TagOptimizeEstimate:
		return []blocks.Block{
			blocks.Text("見積の最適化案を作成します。"),
			blocks.Actions(blocks.ActionItem{
				Label:  "見積ドラフトを開く",
				Action: dispatcher.ActionEstimateDraft,
			}),
		}

	case intent.TagSetBillingMode:
		return s.billingBlocks(ctx, in)

	case intent.TagUpdateProgress:
		return []blocks.Block{
			blocks.Text("進捗を更新します。"),
			blocks.Form("progress_update",
				blocks.FormField{Name: "progress", Label: "進捗率 (%)"},
				blocks.FormField{Name: "note", Label: "メモ"},
			),
		}

	case intent.TagOpenSiteManager:
		return []blocks.Block{
			blocks.Actions(blocks.ActionItem{
				Label:  "現場管理を開く",
				Action: dispatcher.ActionOpenPage,
				Params: map[string]string{"page": "/sites"},
			}),
		}

	default:
		return []blocks.Block{
			blocks.Text("ご用件をもう少し詳しく教えてください。"),
			blocks.Suggest(
				blocks.ActionItem{Label: "日報を作成", Params: map[string]string{"intent": string(intent.TagCreateReport)}},
				blocks.ActionItem{Label: "領収書を登録", Params: map[string]string{"intent": string(intent.TagUploadDoc)}},
				blocks.ActionItem{Label: "請求書を作成", Params: map[string]string{"intent": string(intent.TagCreateInvoice)}},
			),
		}
	}
}

// billingBlocks applies a billing command inline when a site is selected.
// The recognized change is echoed back as a stats block.
func (s *Service) billingBlocks(ctx context.Context, in MessageInput) []blocks.Block {
	if in.SiteID == nil {
		return []blocks.Block{
			blocks.Text("どの現場の請求設定を変更しますか？現場を選択してください。"),
		}
	}

	settings, _, err := s.billing.PatchCommand(ctx, *in.SiteID, in.Text)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return []blocks.Block{
				blocks.Text("設定内容を読み取れませんでした。「税抜にして」「締めは月末」のように指定してください。"),
			}
		}
		s.log.Error("billing patch from chat failed", "error", err)
		return []blocks.Block{
			blocks.Text("請求設定の変更に失敗しました。時間をおいて再度お試しください。"),
		}
	}

	return []blocks.Block{
		blocks.Text("請求設定を更新しました。"),
		blocks.Stats(
			blocks.Stat{Label: "精算方式", Value: billingModeLabel(settings.BillingMode)},
			blocks.Stat{Label: "税区分", Value: taxRuleLabel(settings.TaxRule)},
			blocks.Stat{Label: "税率", Value: fmt.Sprintf("%.0f%%", settings.TaxRate)},
			blocks.Stat{Label: "支払サイト", Value: fmt.Sprintf("%d日", settings.PaymentTermDays)},
		),
	}
}

func intentLabel(tag intent.Tag) string {
	switch tag {
	case intent.TagCreateReport:
		return "日報作成"
	case intent.TagUploadDoc:
		return "書類アップロード"
	case intent.TagCreateInvoice:
		return "請求書作成"
	case intent.TagOptimizeEstimate:
		return "見積最適化"
	case intent.TagSetBillingMode:
		return "請求設定の変更"
	case intent.TagUpdateProgress:
		return "進捗更新"
	case intent.TagOpenSiteManager:
		return "現場管理を開く"
	default:
		return "操作"
	}
}

func billingModeLabel(mode string) string {
	switch mode {
	case "daily":
		return "日当精算"
	case "progress":
		return "出来高精算"
	case "milestone":
		return "マイルストーン精算"
	default:
		return mode
	}
}

func taxRuleLabel(rule string) string {
	if rule == "exclusive" {
		return "税抜"
	}
	return "税込"
}
