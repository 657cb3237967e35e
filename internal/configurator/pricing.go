package configurator

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var hundred = decimal.NewFromInt(100)

// Breakdown holds the figures shown on a quotation.
type Breakdown struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	Total           decimal.Decimal `json:"total"`
}

// Compute prices all entries and applies a percentage discount. The
// discount is expected to be clamped by the caller; no rounding is applied.
func Compute(entries []Entry, discountPercent decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	for _, e := range entries {
		subtotal = subtotal.Add(e.LineTotal())
	}
	discount := subtotal.Mul(discountPercent).Div(hundred)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Breakdown{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		Total:           total,
	}
}

// ComputeTotal returns the discounted grand total, never below zero.
func ComputeTotal(entries []Entry, discountPercent decimal.Decimal) decimal.Decimal {
	return Compute(entries, discountPercent).Total
}

// ClampDiscount bounds a discount percentage to [0, 100].
func ClampDiscount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// ParseDiscount reads discount input; unparseable input counts as zero.
func ParseDiscount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return ClampDiscount(d)
}

var eurPrinter = message.NewPrinter(language.English)

// FormatEUR renders an amount with two decimals and thousands separators,
// e.g. €8,500.00. Use for presentation only.
func FormatEUR(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	fixed := rounded.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.')+1:]
	return sign + "€" + eurPrinter.Sprintf("%d", rounded.IntPart()) + "." + frac
}
