package models

import (
	"fmt"
	"strings"
)

// quantityScale is the fixed-point factor for metric (decimal) quantities.
// "2.5" is stored as 2500 so persisted totals never accumulate
// floating-point drift.
const quantityScale = 1000

// ParseQuantity converts a decimal quantity string like "2.5" into its
// fixed-point representation (2500). At most three fractional digits are
// accepted.
func ParseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 3 {
		return 0, fmt.Errorf("quantity %q: more than 3 decimal places", s)
	}
	for len(frac) < 3 {
		frac += "0"
	}

	var w int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid quantity %q", s)
		}
		w = w*10 + int64(r-'0')
	}
	var f int64
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid quantity %q", s)
		}
		f = f*10 + int64(r-'0')
	}

	return w*quantityScale + f, nil
}

// FormatQuantity renders a fixed-point quantity for display: 2500 -> "2.5",
// 3000 -> "3".
func FormatQuantity(q int64) string {
	whole := q / quantityScale
	frac := q % quantityScale
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	s := fmt.Sprintf("%d.%03d", whole, frac)
	return strings.TrimRight(s, "0")
}

// LineAmount computes one line's amount. Metric quantities take precedence
// over whole-unit counts: amount = round(rate * quantity), with the metric
// quantity interpreted as thousandths.
func LineAmount(line InvoiceLine) int64 {
	if line.MetricQuantity > 0 {
		return roundDiv(line.Rate*line.MetricQuantity, quantityScale)
	}
	return line.Rate * line.Quantity
}

// ComputeTotals fills in every line amount plus the invoice subtotal and
// total. Total = round(subtotal + subtotal*tax/100).
func (i *Invoice) ComputeTotals() {
	var subtotal int64
	for n := range i.Items {
		i.Items[n].Amount = LineAmount(i.Items[n])
		subtotal += i.Items[n].Amount
	}
	i.Subtotal = subtotal
	i.Total = subtotal + roundDiv(subtotal*i.Tax, 100)
}

// roundDiv divides a by b rounding half away from zero.
func roundDiv(a, b int64) int64 {
	if a >= 0 {
		return (a + b/2) / b
	}
	return (a - b/2) / b
}
