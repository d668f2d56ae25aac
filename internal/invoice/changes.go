package invoice

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownField is returned for document field names outside the editable set.
	ErrUnknownField = errors.New("unknown invoice field")
	// ErrUnknownTarget is returned when an adjustment target is neither discount nor tax.
	ErrUnknownTarget = errors.New("unknown adjustment target")
)

// Change is an edit to a document level field.
type Change interface {
	applyTo(d *Document) error
}

// Apply applies change to the document.
func (d *Document) Apply(change Change) error {
	if change == nil {
		return nil
	}
	return change.applyTo(d)
}

// TextField names a free-text document field.
type TextField string

// Editable text fields.
const (
	FieldCompanyName    TextField = "companyName"
	FieldCompanyAddress TextField = "companyAddress"
	FieldCompanyPhone   TextField = "companyPhone"
	FieldCompanyEmail   TextField = "companyEmail"
	FieldClientName     TextField = "clientName"
	FieldClientAddress  TextField = "clientAddress"
	FieldClientPhone    TextField = "clientPhone"
	FieldClientEmail    TextField = "clientEmail"
	FieldInvoiceNumber  TextField = "invoiceNumber"
	FieldIssueDate      TextField = "date"
	FieldDueDate        TextField = "dueDate"
	FieldNotes          TextField = "notes"
	FieldBankName       TextField = "bankName"
	FieldAccountNumber  TextField = "accountNumber"
	FieldAccountName    TextField = "accountName"
	FieldPaymentMethod  TextField = "paymentMethod"
)

// ParseTextField resolves a text field name.
func ParseTextField(raw string) (TextField, error) {
	f := TextField(strings.TrimSpace(raw))
	if f.target(&Document{}) == nil {
		return "", ErrUnknownField
	}
	return f, nil
}

// IsDate reports whether the field holds a date.
func (f TextField) IsDate() bool {
	return f == FieldIssueDate || f == FieldDueDate
}

// IsEmail reports whether the field holds an email address.
func (f TextField) IsEmail() bool {
	return f == FieldCompanyEmail || f == FieldClientEmail
}

func (f TextField) target(d *Document) *string {
	switch f {
	case FieldCompanyName:
		return &d.Company.Name
	case FieldCompanyAddress:
		return &d.Company.Address
	case FieldCompanyPhone:
		return &d.Company.Phone
	case FieldCompanyEmail:
		return &d.Company.Email
	case FieldClientName:
		return &d.Client.Name
	case FieldClientAddress:
		return &d.Client.Address
	case FieldClientPhone:
		return &d.Client.Phone
	case FieldClientEmail:
		return &d.Client.Email
	case FieldInvoiceNumber:
		return &d.Number
	case FieldIssueDate:
		return &d.IssueDate
	case FieldDueDate:
		return &d.DueDate
	case FieldNotes:
		return &d.Notes
	case FieldBankName:
		return &d.Payment.BankName
	case FieldAccountNumber:
		return &d.Payment.AccountNumber
	case FieldAccountName:
		return &d.Payment.AccountName
	case FieldPaymentMethod:
		return &d.Payment.Method
	}
	return nil
}

// TextChange replaces a free-text field.
type TextChange struct {
	Field TextField
	Value string
}

func (c TextChange) applyTo(d *Document) error {
	dst := c.Field.target(d)
	if dst == nil {
		return ErrUnknownField
	}
	*dst = c.Value
	return nil
}

// Target selects the discount or the tax adjustment.
type Target string

const (
	// TargetDiscount is the discount taken from the subtotal.
	TargetDiscount Target = "discount"
	// TargetTax is the tax added on the discounted base.
	TargetTax Target = "tax"
)

// ParseTarget resolves an adjustment target name.
func ParseTarget(raw string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(raw))) {
	case TargetDiscount:
		return TargetDiscount, nil
	case TargetTax:
		return TargetTax, nil
	default:
		return "", ErrUnknownTarget
	}
}

func (t Target) adjustment(d *Document) *Adjustment {
	switch t {
	case TargetDiscount:
		return &d.Discount
	case TargetTax:
		return &d.Tax
	}
	return nil
}

// AdjustmentAmountChange replaces the discount or tax value.
type AdjustmentAmountChange struct {
	Target Target
	Value  Amount
}

func (c AdjustmentAmountChange) applyTo(d *Document) error {
	adj := c.Target.adjustment(d)
	if adj == nil {
		return ErrUnknownTarget
	}
	if c.Value.IsNegative() {
		c.Value = decimal.Zero
	}
	adj.Amount = c.Value
	return nil
}

// AdjustmentUnitChange switches the discount or tax between percentage and fixed.
type AdjustmentUnitChange struct {
	Target Target
	Unit   Unit
}

func (c AdjustmentUnitChange) applyTo(d *Document) error {
	adj := c.Target.adjustment(d)
	if adj == nil {
		return ErrUnknownTarget
	}
	if !c.Unit.Valid() {
		return ErrUnknownUnit
	}
	adj.Unit = c.Unit
	return nil
}
