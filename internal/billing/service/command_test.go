package service

import "testing"

func TestParseCommand_TaxRuleOnly(t *testing.T) {
	patch := ParseCommand("税抜にしてね")

	if patch.TaxRule == nil || *patch.TaxRule != "exclusive" {
		t.Fatalf("expected tax_rule exclusive, got %+v", patch.TaxRule)
	}
	if patch.BillingMode != nil || patch.TaxRate != nil || patch.ClosingDay != nil ||
		patch.PaymentTermDays != nil || patch.Rounding != nil {
		t.Fatalf("expected only tax_rule to be set, got %+v", patch)
	}
}

func TestParseCommand_Inclusive(t *testing.T) {
	patch := ParseCommand("税込でお願い")

	if patch.TaxRule == nil || *patch.TaxRule != "inclusive" {
		t.Fatalf("expected tax_rule inclusive, got %+v", patch.TaxRule)
	}
}

func TestParseCommand_TaxRate(t *testing.T) {
	patch := ParseCommand("税率8%に変更")

	if patch.TaxRate == nil || *patch.TaxRate != 8 {
		t.Fatalf("expected tax_rate 8, got %+v", patch.TaxRate)
	}
}

func TestParseCommand_BillingModes(t *testing.T) {
	cases := []struct {
		text string
		mode string
	}{
		{"日当払いにして", "daily"},
		{"出来高払いで", "progress"},
		{"マイルストーン払いにしたい", "milestone"},
	}

	for _, tc := range cases {
		patch := ParseCommand(tc.text)
		if patch.BillingMode == nil || *patch.BillingMode != tc.mode {
			t.Fatalf("text %q: expected mode %s, got %+v", tc.text, tc.mode, patch.BillingMode)
		}
	}
}

func TestParseCommand_Rounding(t *testing.T) {
	cases := []struct {
		text   string
		policy string
	}{
		{"端数は切り捨てで", "cut"},
		{"端数は四捨五入", "round"},
		{"切り上げにして", "ceil"},
	}

	for _, tc := range cases {
		patch := ParseCommand(tc.text)
		if patch.Rounding == nil || *patch.Rounding != tc.policy {
			t.Fatalf("text %q: expected rounding %s, got %+v", tc.text, tc.policy, patch.Rounding)
		}
	}
}

func TestParseCommand_ClosingDayAndPaymentTerm(t *testing.T) {
	patch := ParseCommand("月末締めの支払いサイト60日で")

	if patch.ClosingDay == nil || *patch.ClosingDay != "end" {
		t.Fatalf("expected closing_day end, got %+v", patch.ClosingDay)
	}
	if patch.PaymentTermDays == nil || *patch.PaymentTermDays != 60 {
		t.Fatalf("expected payment_term_days 60, got %+v", patch.PaymentTermDays)
	}

	patch = ParseCommand("締めは15日")
	if patch.ClosingDay == nil || *patch.ClosingDay != "15" {
		t.Fatalf("expected closing_day 15, got %+v", patch.ClosingDay)
	}
}

func TestParseCommand_NothingRecognized(t *testing.T) {
	patch := ParseCommand("今日は暑いですね")

	if !patch.IsEmpty() {
		t.Fatalf("expected empty patch, got %+v", patch)
	}
}
