package entities

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Margin is a percentage of list price. Applicable is false when the margin is
// undefined (zero list price with a non-zero cost).
type Margin struct {
	Percent    decimal.Decimal
	Applicable bool
}

// String renders the margin as "12.50%" or "N/A"
func (m Margin) String() string {
	if !m.Applicable {
		return "N/A"
	}
	return m.Percent.StringFixed(2) + "%"
}

// ComputeLineTotal returns quantity * unitCost rounded to cents
func ComputeLineTotal(quantity Quantity, unitCost Money) Money {
	return Money{unitCost.Mul(decimal.NewFromInt(int64(quantity))).Round(2)}
}

// ComputeMargin returns ((listPrice - unitCost) / listPrice) * 100
func ComputeMargin(unitCost, listPrice Money) Margin {
	if listPrice.IsZero() {
		if unitCost.IsZero() {
			return Margin{Percent: decimal.Zero, Applicable: true}
		}
		return Margin{}
	}
	pct := listPrice.Sub(unitCost.Decimal).Div(listPrice.Decimal).Mul(hundred)
	return Margin{Percent: pct, Applicable: true}
}
