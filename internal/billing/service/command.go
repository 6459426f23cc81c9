package service

import (
	"regexp"
	"strconv"
)

// Patch is a partial settings change. Nil fields are left untouched;
// the patch never overwrites fields the input did not mention.
type Patch struct {
	BillingMode     *string
	TaxRule         *string
	TaxRate         *float64
	ClosingDay      *string
	PaymentTermDays *int
	Rounding        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.BillingMode == nil && p.TaxRule == nil && p.TaxRate == nil &&
		p.ClosingDay == nil && p.PaymentTermDays == nil && p.Rounding == nil
}

// Command parsing uses its own rule set, independent of the chat intent
// classifier. Each rule recognizes one settings field.
var (
	taxExclusiveRe = regexp.MustCompile(`税抜`)
	taxInclusiveRe = regexp.MustCompile(`税込`)
	taxRateRe      = regexp.MustCompile(`税率\s*(\d+(?:\.\d+)?)\s*(?:%|％|パーセント)?`)

	modeDailyRe     = regexp.MustCompile(`日当|日割`)
	modeProgressRe  = regexp.MustCompile(`出来高|進捗`)
	modeMilestoneRe = regexp.MustCompile(`マイルストーン`)

	roundCutRe  = regexp.MustCompile(`切り?捨て`)
	roundHalfRe = regexp.MustCompile(`四捨五入`)
	roundCeilRe = regexp.MustCompile(`切り?上げ`)

	closingEndRe = regexp.MustCompile(`(?:締め日?\s*(?:は)?\s*)?(?:月末|末日)締め?|締め日?\s*(?:は)?\s*(?:月末|末日)`)
	closingDayRe = regexp.MustCompile(`締め日?\s*(?:は)?\s*(\d{1,2})日|(\d{1,2})日締め`)

	paymentTermRe = regexp.MustCompile(`支払い?(?:サイト)?\s*(\d+)\s*日`)
)

// ParseCommand turns a free-text settings command into a partial patch.
// Only fields explicitly recognized in the text are set.
func ParseCommand(text string) Patch {
	var patch Patch

	switch {
	case taxExclusiveRe.MatchString(text):
		patch.TaxRule = strPtr("exclusive")
	case taxInclusiveRe.MatchString(text):
		patch.TaxRule = strPtr("inclusive")
	}

	if m := taxRateRe.FindStringSubmatch(text); m != nil {
		if rate, err := strconv.ParseFloat(m[1], 64); err == nil {
			patch.TaxRate = &rate
		}
	}

	switch {
	case modeMilestoneRe.MatchString(text):
		patch.BillingMode = strPtr("milestone")
	case modeDailyRe.MatchString(text):
		patch.BillingMode = strPtr("daily")
	case modeProgressRe.MatchString(text):
		patch.BillingMode = strPtr("progress")
	}

	switch {
	case roundHalfRe.MatchString(text):
		patch.Rounding = strPtr("round")
	case roundCeilRe.MatchString(text):
		patch.Rounding = strPtr("ceil")
	case roundCutRe.MatchString(text):
		patch.Rounding = strPtr("cut")
	}

	if closingEndRe.MatchString(text) {
		patch.ClosingDay = strPtr("end")
	} else if m := closingDayRe.FindStringSubmatch(text); m != nil {
		day := m[1]
		if day == "" {
			day = m[2]
		}
		patch.ClosingDay = &day
	}

	if m := paymentTermRe.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			patch.PaymentTermDays = &days
		}
	}

	return patch
}

func strPtr(s string) *string { return &s }
