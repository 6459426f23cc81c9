// Package finance computes invoice and estimate totals. Amounts are integer
// yen. Line totals are rounded per line before aggregation so rounding drift
// stays attributable to individual lines, and the rounding policy is applied
// to the tax amount only, never to subtotal or total directly.
package finance

import "math"

// TaxRule determines whether line prices already contain tax.
type TaxRule string

const (
	TaxInclusive TaxRule = "inclusive"
	TaxExclusive TaxRule = "exclusive"
)

// Rounding is the policy applied to the computed tax amount.
type Rounding string

const (
	// RoundCut truncates toward zero.
	RoundCut Rounding = "cut"
	// RoundHalfUp rounds half away from zero.
	RoundHalfUp Rounding = "round"
	// RoundCeil rounds up.
	RoundCeil Rounding = "ceil"
)

// LineItem is one billable line.
type LineItem struct {
	Description string
	Qty         float64
	Unit        string
	UnitPrice   int64
}

// Totals is the aggregate of a document.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// LineTotal computes qty x unit_price rounded to the nearest yen.
// This happens at the line level, before any aggregation.
func LineTotal(qty float64, unitPrice int64) int64 {
	return int64(math.Round(qty * float64(unitPrice)))
}

// Calculate derives subtotal/tax/total from line items under the given tax
// rule, tax rate (percent) and rounding policy. An empty item list yields all
// zeros.
func Calculate(rule TaxRule, ratePercent float64, rounding Rounding, items []LineItem) Totals {
	var sum int64
	for _, item := range items {
		sum += LineTotal(item.Qty, item.UnitPrice)
	}
	return CalculateAmount(rule, ratePercent, rounding, sum)
}

// CalculateAmount derives totals from a single pre-aggregated amount.
// Under the exclusive rule the amount is the subtotal; under the inclusive
// rule it is the tax-included total.
func CalculateAmount(rule TaxRule, ratePercent float64, rounding Rounding, amount int64) Totals {
	if amount == 0 {
		return Totals{}
	}

	switch rule {
	case TaxExclusive:
		tax := applyRounding(rounding, float64(amount)*ratePercent/100)
		return Totals{Subtotal: amount, Tax: tax, Total: amount + tax}
	default: // inclusive
		tax := applyRounding(rounding, float64(amount)*ratePercent/(100+ratePercent))
		return Totals{Subtotal: amount - tax, Tax: tax, Total: amount}
	}
}

// LineTotals returns the per-line totals in input order.
func LineTotals(items []LineItem) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = LineTotal(item.Qty, item.UnitPrice)
	}
	return out
}

func applyRounding(policy Rounding, v float64) int64 {
	switch policy {
	case RoundCut:
		return int64(math.Trunc(v))
	case RoundCeil:
		return int64(math.Ceil(v))
	default:
		return int64(math.Round(v))
	}
}

// ParseTaxRule normalizes a stored tax rule string, defaulting to inclusive.
func ParseTaxRule(s string) TaxRule {
	if s == string(TaxExclusive) {
		return TaxExclusive
	}
	return TaxInclusive
}

// ParseRounding normalizes a stored rounding string, defaulting to half-up.
func ParseRounding(s string) Rounding {
	switch s {
	case string(RoundCut):
		return RoundCut
	case string(RoundCeil):
		return RoundCeil
	default:
		return RoundHalfUp
	}
}
