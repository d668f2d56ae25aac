package invoice

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownUnit is returned when an adjustment unit is neither percentage nor fixed.
var ErrUnknownUnit = errors.New("unknown adjustment unit")

// Unit describes how a discount or tax value is interpreted.
type Unit string

const (
	// UnitPercentage applies the value as a percentage of its base.
	UnitPercentage Unit = "percentage"
	// UnitFixed applies the value as an absolute currency amount.
	UnitFixed Unit = "fixed"
)

// ParseUnit resolves a unit name.
func ParseUnit(raw string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitPercentage:
		return UnitPercentage, nil
	case UnitFixed:
		return UnitFixed, nil
	default:
		return "", ErrUnknownUnit
	}
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitPercentage || u == UnitFixed
}

// Adjustment is a discount or tax value together with its unit.
type Adjustment struct {
	Amount Amount `json:"amount"`
	Unit   Unit   `json:"unit"`
}

// Of returns the currency amount the adjustment represents against base.
func (a Adjustment) Of(base Amount) Amount {
	if a.Unit == UnitPercentage {
		return base.Mul(a.Amount).Div(hundred)
	}
	return a.Amount
}

// Totals aggregates the computed invoice figures.
type Totals struct {
	Subtotal       Amount `json:"subtotal"`
	DiscountAmount Amount `json:"discountAmount"`
	AfterDiscount  Amount `json:"afterDiscount"`
	TaxAmount      Amount `json:"taxAmount"`
	GrandTotal     Amount `json:"grandTotal"`
}

// Compute derives invoice totals from the line items and adjustments.
// The discount is taken from the subtotal first and tax is applied to what
// remains. A discount larger than the subtotal is not clamped; the negative
// base flows into tax and the grand total.
func Compute(items []LineItem, discount, tax Adjustment) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	discountAmount := discount.Of(subtotal)
	afterDiscount := subtotal.Sub(discountAmount)
	taxAmount := tax.Of(afterDiscount)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		AfterDiscount:  afterDiscount,
		TaxAmount:      taxAmount,
		GrandTotal:     afterDiscount.Add(taxAmount),
	}
}
