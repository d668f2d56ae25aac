package invoice

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for issue and due dates.
const DateLayout = "2006-01-02"

// Party identifies the issuing company or the billed client.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// PaymentDetails tells the client how to pay.
type PaymentDetails struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Method        string `json:"paymentMethod"`
}

// Document is the single invoice edited during a session.
type Document struct {
	Company   Party          `json:"company"`
	Client    Party          `json:"client"`
	Number    string         `json:"invoiceNumber"`
	IssueDate string         `json:"date"`
	DueDate   string         `json:"dueDate"`
	Items     []LineItem     `json:"items"`
	Discount  Adjustment     `json:"discount"`
	Tax       Adjustment     `json:"tax"`
	Notes     string         `json:"notes"`
	Payment   PaymentDetails `json:"paymentDetails"`

	// LastItemID is the counter behind item ids. It only grows.
	LastItemID uint64 `json:"lastItemId"`
}

// New returns a blank document issued on now with a single empty line item.
func New(now time.Time) *Document {
	doc := &Document{
		IssueDate: now.Format(DateLayout),
		Discount:  Adjustment{Amount: decimal.Zero, Unit: UnitPercentage},
		Tax:       Adjustment{Amount: decimal.Zero, Unit: UnitPercentage},
	}
	doc.AddItem()
	return doc
}

// Normalize repairs a document decoded from outside the editor: amounts are
// bounded like parsed input, unknown units become percentages, item totals
// are recomputed and the id counter is moved past every numeric item id.
// Missing or repeated ids get fresh ones. A document without items gets one
// blank item.
func (d *Document) Normalize() {
	for _, adj := range []*Adjustment{&d.Discount, &d.Tax} {
		adj.Amount = BoundAmount(adj.Amount)
		if !adj.Unit.Valid() {
			adj.Unit = UnitPercentage
		}
	}
	for i := range d.Items {
		it := &d.Items[i]
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		it.UnitPrice = BoundAmount(it.UnitPrice)
		it.recompute()
		if n, err := strconv.ParseUint(it.ID, 10, 64); err == nil && n > d.LastItemID {
			d.LastItemID = n
		}
	}
	seen := make(map[string]bool, len(d.Items))
	for i := range d.Items {
		it := &d.Items[i]
		if it.ID == "" || seen[it.ID] {
			d.LastItemID++
			it.ID = strconv.FormatUint(d.LastItemID, 10)
		}
		seen[it.ID] = true
	}
	if len(d.Items) == 0 {
		d.AddItem()
	}
}

// Totals computes the document totals.
func (d *Document) Totals() Totals {
	return Compute(d.Items, d.Discount, d.Tax)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Items = append([]LineItem(nil), d.Items...)
	return &cp
}
