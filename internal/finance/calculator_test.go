package finance

import (
	"math"
	"testing"
)

func TestCalculate_InclusiveTenPercent(t *testing.T) {
	items := []LineItem{
		{Description: "足場材", Qty: 2, UnitPrice: 3200},
	}

	totals := Calculate(TaxInclusive, 10, RoundHalfUp, items)

	if totals.Total != 6400 {
		t.Fatalf("expected total 6400, got %d", totals.Total)
	}
	// 6400 * 10 / 110 = 581.81... rounds to 582
	if totals.Tax != 582 {
		t.Fatalf("expected tax 582, got %d", totals.Tax)
	}
	if totals.Subtotal != 5818 {
		t.Fatalf("expected subtotal 5818, got %d", totals.Subtotal)
	}
}

func TestCalculate_ExclusiveTenPercent(t *testing.T) {
	items := []LineItem{
		{Description: "労務費", Qty: 1, UnitPrice: 10000},
	}

	totals := Calculate(TaxExclusive, 10, RoundHalfUp, items)

	if totals.Subtotal != 10000 {
		t.Fatalf("expected subtotal 10000, got %d", totals.Subtotal)
	}
	if totals.Tax != 1000 {
		t.Fatalf("expected tax 1000, got %d", totals.Tax)
	}
	if totals.Total != 11000 {
		t.Fatalf("expected total 11000, got %d", totals.Total)
	}
}

func TestCalculate_EmptyItems(t *testing.T) {
	totals := Calculate(TaxExclusive, 10, RoundHalfUp, nil)

	if totals.Subtotal != 0 || totals.Tax != 0 || totals.Total != 0 {
		t.Fatalf("expected all zeros, got %+v", totals)
	}
}

func TestCalculate_RoundingPolicies(t *testing.T) {
	// subtotal 1001 at 10% gives raw tax 100.1
	cases := []struct {
		policy   Rounding
		expected int64
	}{
		{RoundCut, 100},
		{RoundHalfUp, 100},
		{RoundCeil, 101},
	}

	for _, tc := range cases {
		totals := CalculateAmount(TaxExclusive, 10, tc.policy, 1001)
		if totals.Tax != tc.expected {
			t.Fatalf("policy %s: expected tax %d, got %d", tc.policy, tc.expected, totals.Tax)
		}
		if totals.Total != 1001+tc.expected {
			t.Fatalf("policy %s: expected total %d, got %d", tc.policy, 1001+tc.expected, totals.Total)
		}
	}
}

func TestCalculate_RoundingAppliedToTaxOnly(t *testing.T) {
	// Inclusive: subtotal must always be total - tax exactly, never rounded
	// on its own.
	for _, policy := range []Rounding{RoundCut, RoundHalfUp, RoundCeil} {
		totals := CalculateAmount(TaxInclusive, 8, policy, 9973)
		if totals.Subtotal+totals.Tax != totals.Total {
			t.Fatalf("policy %s: subtotal+tax != total: %+v", policy, totals)
		}
		if totals.Total != 9973 {
			t.Fatalf("policy %s: inclusive total must equal input amount, got %d", policy, totals.Total)
		}
	}
}

func TestLineTotal_RoundedPerLine(t *testing.T) {
	// 0.5 man-day at 15333 yen = 7666.5 rounds to 7667 at the line level.
	if got := LineTotal(0.5, 15333); got != 7667 {
		t.Fatalf("expected 7667, got %d", got)
	}

	items := []LineItem{
		{Qty: 0.5, UnitPrice: 15333},
		{Qty: 0.5, UnitPrice: 15333},
	}
	totals := Calculate(TaxExclusive, 0, RoundHalfUp, items)
	// Per-line rounding: 7667 + 7667, not round(15333).
	if totals.Subtotal != 15334 {
		t.Fatalf("expected per-line rounding to give 15334, got %d", totals.Subtotal)
	}
}

func TestCalculate_RateRoundTrip(t *testing.T) {
	// Re-deriving the rate from the exclusive result recovers it within
	// rounding tolerance.
	rates := []float64{5, 8, 10}
	subtotals := []int64{12000, 45678, 999999}

	for _, rate := range rates {
		for _, subtotal := range subtotals {
			totals := CalculateAmount(TaxExclusive, rate, RoundHalfUp, subtotal)
			derived := float64(totals.Total-totals.Subtotal) / float64(totals.Subtotal) * 100
			if math.Abs(derived-rate) > 100.0/float64(subtotal) {
				t.Fatalf("rate %v subtotal %d: derived %v out of tolerance", rate, subtotal, derived)
			}
		}
	}
}

func TestParseDefaults(t *testing.T) {
	if ParseTaxRule("garbage") != TaxInclusive {
		t.Fatalf("expected inclusive default")
	}
	if ParseRounding("garbage") != RoundHalfUp {
		t.Fatalf("expected half-up default")
	}
}
