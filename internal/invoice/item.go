package invoice

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound is returned when no line item has the requested id.
	ErrItemNotFound = errors.New("line item not found")
	// ErrUnknownItemField is returned for item field names outside the editable set.
	ErrUnknownItemField = errors.New("unknown line item field")
)

// LineItem is one invoiced product or service row.
type LineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   Amount `json:"unitPrice"`
	Total       Amount `json:"total"`
}

func newLineItem(id string) LineItem {
	return LineItem{
		ID:        id,
		Quantity:  1,
		UnitPrice: decimal.Zero,
		Total:     decimal.Zero,
	}
}

func (it *LineItem) recompute() {
	it.Total = decimal.NewFromInt(it.Quantity).Mul(it.UnitPrice)
}

// ItemChange is an edit to a single line item field.
type ItemChange interface {
	applyTo(it *LineItem)
}

// DescriptionChange replaces the item description. It never touches the total.
type DescriptionChange struct {
	Value string
}

func (c DescriptionChange) applyTo(it *LineItem) {
	it.Description = c.Value
}

// QuantityChange replaces the item quantity and recomputes the total.
type QuantityChange struct {
	Value int64
}

func (c QuantityChange) applyTo(it *LineItem) {
	if c.Value < 0 {
		c.Value = 0
	}
	it.Quantity = c.Value
	it.recompute()
}

// UnitPriceChange replaces the item unit price and recomputes the total.
type UnitPriceChange struct {
	Value Amount
}

func (c UnitPriceChange) applyTo(it *LineItem) {
	if c.Value.IsNegative() {
		c.Value = decimal.Zero
	}
	it.UnitPrice = c.Value
	it.recompute()
}

// ParseItemChange builds a change from a field name and raw form input.
// Numeric input is normalised, never rejected.
func ParseItemChange(field, raw string) (ItemChange, error) {
	switch strings.TrimSpace(field) {
	case "description":
		return DescriptionChange{Value: raw}, nil
	case "quantity":
		return QuantityChange{Value: ParseQuantity(raw)}, nil
	case "unitPrice":
		return UnitPriceChange{Value: ParseAmount(raw)}, nil
	default:
		return nil, ErrUnknownItemField
	}
}
