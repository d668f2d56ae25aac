package invoice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextChangeUpdatesField(t *testing.T) {
	doc := newDoc()
	for _, tc := range []struct {
		field TextField
		get   func(*Document) string
	}{
		{FieldCompanyName, func(d *Document) string { return d.Company.Name }},
		{FieldClientEmail, func(d *Document) string { return d.Client.Email }},
		{FieldInvoiceNumber, func(d *Document) string { return d.Number }},
		{FieldDueDate, func(d *Document) string { return d.DueDate }},
		{FieldAccountName, func(d *Document) string { return d.Payment.AccountName }},
		{FieldNotes, func(d *Document) string { return d.Notes }},
	} {
		require.NoError(t, doc.Apply(TextChange{Field: tc.field, Value: "value-" + string(tc.field)}))
		require.Equal(t, "value-"+string(tc.field), tc.get(doc))
	}
}

func TestTextChangeUnknownField(t *testing.T) {
	doc := newDoc()
	require.ErrorIs(t, doc.Apply(TextChange{Field: "items", Value: "x"}), ErrUnknownField)

	_, err := ParseTextField("discount")
	require.ErrorIs(t, err, ErrUnknownField)

	f, err := ParseTextField(" paymentMethod ")
	require.NoError(t, err)
	require.Equal(t, FieldPaymentMethod, f)
}

func TestAdjustmentChanges(t *testing.T) {
	doc := newDoc()
	require.NoError(t, doc.Apply(AdjustmentAmountChange{Target: TargetDiscount, Value: dec("5000")}))
	require.NoError(t, doc.Apply(AdjustmentUnitChange{Target: TargetDiscount, Unit: UnitFixed}))
	require.True(t, doc.Discount.Amount.Equal(dec("5000")))
	require.Equal(t, UnitFixed, doc.Discount.Unit)

	require.NoError(t, doc.Apply(AdjustmentAmountChange{Target: TargetTax, Value: dec("-3")}))
	require.True(t, doc.Tax.Amount.IsZero())

	require.ErrorIs(t, doc.Apply(AdjustmentUnitChange{Target: TargetTax, Unit: "IDR"}), ErrUnknownUnit)
	require.ErrorIs(t, doc.Apply(AdjustmentAmountChange{Target: "shipping", Value: dec("1")}), ErrUnknownTarget)

	target, err := ParseTarget("TAX")
	require.NoError(t, err)
	require.Equal(t, TargetTax, target)
}
