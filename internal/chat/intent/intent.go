// Package intent classifies free-text chat messages into business intents.
// Classification is pure pattern matching over an ordered rule table; the
// declaration order of the table is part of the contract because the first
// matching intent wins.
package intent

import (
	"regexp"
	"strings"
)

// Tag identifies a classified user goal.
type Tag string

const (
	TagCreateReport     Tag = "create_report"
	TagUploadDoc        Tag = "upload_doc"
	TagCreateInvoice    Tag = "create_invoice"
	TagOptimizeEstimate Tag = "optimize_estimate"
	TagSetBillingMode   Tag = "set_billing_mode"
	TagUpdateProgress   Tag = "update_progress"
	TagOpenSiteManager  Tag = "open_site_manager"
	TagUnknown          Tag = "unknown"
)

const (
	// confidence when a positive pattern matched cleanly
	matchConfidence = 0.9
	// confidence when a negative pattern also matched; caller must confirm
	confirmConfidence = 0.6
	// confidence when nothing matched at all: weak guess, not zero evidence
	guessConfidence = 0.2

	// ReasonNegativeHit marks a result where a negative rule fired alongside
	// the positive one.
	ReasonNegativeHit = "negative-hit"
)

// Result is the outcome of classifying one message.
type Result struct {
	Intent            Tag     `json:"intent"`
	Confidence        float64 `json:"confidence"`
	Matched           string  `json:"matched,omitempty"`
	NeedsConfirmation bool    `json:"needsConfirmation,omitempty"`
	Reason            string  `json:"reason,omitempty"`
}

type rule struct {
	tag      Tag
	positive []*regexp.Regexp
	negative []*regexp.Regexp
}

// defaultRules is evaluated top to bottom; the first positive hit decides the
// intent. Do not reorder: report detection is checked before upload, upload
// before invoice, and so on.
func defaultRules() []rule {
	return []rule{
		{
			tag: TagCreateReport,
			positive: compile(
				`日報`,
				`作業(内容|報告)`,
				`(今日|本日).*(報告|出面)`,
				`daily\s*report`,
			),
			negative: compile(
				`日報.*(見せ|確認|一覧|検索|探し)`,
			),
		},
		{
			tag: TagUploadDoc,
			positive: compile(
				`領収書`,
				`レシート`,
				`納品書`,
				`(写真|画像|ファイル).*(送|上げ|アップ)`,
				`アップロード`,
			),
			negative: compile(
				`領収書.*(発行|ください|ちょうだい)`,
			),
		},
		{
			tag: TagCreateInvoice,
			positive: compile(
				`請求書`,
				`請求.*(作|出し|お願い)`,
				`invoice`,
			),
			negative: compile(
				`請求書.*(届|来|もらっ|受け取)`,
			),
		},
		{
			tag: TagOptimizeEstimate,
			positive: compile(
				`見積`,
				`原価.*(下げ|削減|見直)`,
				`コスト(ダウン|削減)`,
				`estimate`,
			),
		},
		{
			tag: TagSetBillingMode,
			positive: compile(
				`税(込|抜)`,
				`税率`,
				`締め日`,
				`支払いサイト`,
				`(日当|日割|出来高|マイルストーン)(払い|精算|にし)`,
				`請求方式`,
				`端数`,
			),
		},
		{
			tag: TagUpdateProgress,
			positive: compile(
				`進捗`,
				`工程`,
				`(\d+)\s*(%|％|パーセント)`,
				`どこまで(進|でき)`,
			),
		},
		{
			tag: TagOpenSiteManager,
			positive: compile(
				`現場(一覧|管理)`,
				`サイトマネージャ`,
				`site\s*manager`,
			),
		},
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Classifier matches messages against the rule table. Construct with New and
// inject where needed; there is no package-level mutable state.
type Classifier struct {
	rules []rule
}

// New creates a classifier with the built-in rule table.
func New() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Parse classifies the given text. It is pure and deterministic: the same
// input always yields the same result.
func (c *Classifier) Parse(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Intent: TagUnknown, Confidence: 0}
	}

	for _, r := range c.rules {
		matched, ok := firstMatch(r.positive, trimmed)
		if !ok {
			continue
		}

		// A positive cue fired, so we never silently fall back to unknown.
		// A negative hit only downgrades to "ask the user first".
		if _, negHit := firstMatch(r.negative, trimmed); negHit {
			return Result{
				Intent:            r.tag,
				Confidence:        confirmConfidence,
				Matched:           matched,
				NeedsConfirmation: true,
				Reason:            ReasonNegativeHit,
			}
		}

		return Result{Intent: r.tag, Confidence: matchConfidence, Matched: matched}
	}

	return Result{Intent: TagUnknown, Confidence: guessConfidence}
}

// Tags returns the intent tags in evaluation order.
func (c *Classifier) Tags() []Tag {
	tags := make([]Tag, 0, len(c.rules))
	for _, r := range c.rules {
		tags = append(tags, r.tag)
	}
	return tags
}

func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, p := range patterns {
		if p.MatchString(text) {
			return p.String(), true
		}
	}
	return "", false
}
