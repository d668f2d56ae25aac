package render

import (
	"strconv"
	"strings"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

// PartyView is a company or client block with placeholders applied.
type PartyView struct {
	Heading string
	Name    string
	Address string
	Phone   string
	Email   string
}

// ItemView is one formatted table row.
type ItemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// Row is a labelled value.
type Row struct {
	Label string
	Value string
}

// Preview is the read-only rendering of a document shared by the HTML preview,
// the print page and the PDF export.
type Preview struct {
	Title      string
	Company    PartyView
	Client     PartyView
	Meta       []Row
	Columns    [4]string
	Items      []ItemView
	Subtotal   Row
	Discount   *Row
	Tax        *Row
	GrandTotal Row
	Payment    []Row
	PaymentHdr string
	Notes      string
	NotesHdr   string
}

// BuildPreview formats doc and totals for display. The numeric values are
// only formatted here, never altered.
func BuildPreview(doc *invoice.Document, totals invoice.Totals) Preview {
	p := Preview{
		Title:   labelTitle,
		Company: party(labelFrom, doc.Company, placeholderCompanyName, placeholderCompanyAddress),
		Client:  party(labelTo, doc.Client, placeholderClientName, placeholderClientAddress),
		Meta: []Row{
			{Label: labelInvoiceNumber, Value: orDefault(doc.Number, placeholderInvoiceNumber)},
			{Label: labelDate, Value: FormatDate(doc.IssueDate)},
			{Label: labelDueDate, Value: FormatDate(doc.DueDate)},
		},
		Columns:    [4]string{labelDescription, labelQty, labelUnitPrice, labelTotal},
		Items:      make([]ItemView, 0, len(doc.Items)),
		Subtotal:   Row{Label: labelSubtotal, Value: FormatIDR(totals.Subtotal)},
		GrandTotal: Row{Label: labelGrandTotal, Value: FormatIDR(totals.GrandTotal)},
		PaymentHdr: labelPaymentDetails,
		Notes:      strings.TrimSpace(doc.Notes),
		NotesHdr:   labelNotes,
	}
	for _, it := range doc.Items {
		p.Items = append(p.Items, ItemView{
			Description: orDefault(it.Description, placeholderDescription),
			Quantity:    strconv.FormatInt(it.Quantity, 10),
			UnitPrice:   FormatIDR(it.UnitPrice),
			Total:       FormatIDR(it.Total),
		})
	}
	if doc.Discount.Amount.IsPositive() {
		p.Discount = &Row{
			Label: "Diskon (" + adjustmentLabel(doc.Discount) + "):",
			Value: "-" + FormatIDR(totals.DiscountAmount),
		}
	}
	if doc.Tax.Amount.IsPositive() {
		p.Tax = &Row{
			Label: "Pajak (" + adjustmentLabel(doc.Tax) + "):",
			Value: FormatIDR(totals.TaxAmount),
		}
	}
	p.Payment = paymentRows(doc.Payment)
	return p
}

// Filename returns the download name for the exported PDF.
func Filename(number string) string {
	name := strings.TrimSpace(number)
	if name == "" {
		name = "draft"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	return "Invoice-" + name + ".pdf"
}

func party(heading string, p invoice.Party, namePlaceholder, addressPlaceholder string) PartyView {
	return PartyView{
		Heading: heading,
		Name:    orDefault(p.Name, namePlaceholder),
		Address: orDefault(p.Address, addressPlaceholder),
		Phone:   strings.TrimSpace(p.Phone),
		Email:   strings.TrimSpace(p.Email),
	}
}

func adjustmentLabel(a invoice.Adjustment) string {
	if a.Unit == invoice.UnitPercentage {
		return FormatNumber(a.Amount) + "%"
	}
	return FormatNumber(a.Amount) + " " + CurrencyCode
}

// paymentRows returns nil unless a bank name or account number is present.
func paymentRows(pd invoice.PaymentDetails) []Row {
	if strings.TrimSpace(pd.BankName) == "" && strings.TrimSpace(pd.AccountNumber) == "" {
		return nil
	}
	var rows []Row
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			rows = append(rows, Row{Label: label, Value: v})
		}
	}
	add(labelBank, pd.BankName)
	add(labelAccountNumber, pd.AccountNumber)
	add(labelAccountName, pd.AccountName)
	add(labelMethod, pd.Method)
	return rows
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
