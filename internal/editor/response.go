package editor

import (
	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/render"
)

// displayTotals carries the formatted amounts shown in the preview.
type displayTotals struct {
	Subtotal   string            `json:"subtotal"`
	Discount   string            `json:"discount"`
	Tax        string            `json:"tax"`
	GrandTotal string            `json:"grandTotal"`
	Items      map[string]string `json:"items"`
}

type snapshotResponse struct {
	Document *invoice.Document `json:"document"`
	Totals   invoice.Totals    `json:"totals"`
	Display  displayTotals     `json:"display"`
}

type itemResponse struct {
	Item      invoice.LineItem `json:"item"`
	TotalText string           `json:"totalText"`
	snapshotResponse
}

func newSnapshotResponse(snap Snapshot) snapshotResponse {
	items := make(map[string]string, len(snap.Document.Items))
	for _, it := range snap.Document.Items {
		items[it.ID] = render.FormatIDR(it.Total)
	}
	return snapshotResponse{
		Document: snap.Document,
		Totals:   snap.Totals,
		Display: displayTotals{
			Subtotal:   render.FormatIDR(snap.Totals.Subtotal),
			Discount:   render.FormatIDR(snap.Totals.DiscountAmount),
			Tax:        render.FormatIDR(snap.Totals.TaxAmount),
			GrandTotal: render.FormatIDR(snap.Totals.GrandTotal),
			Items:      items,
		},
	}
}

func newItemResponse(item invoice.LineItem, snap Snapshot) itemResponse {
	return itemResponse{
		Item:             item,
		TotalText:        render.FormatIDR(item.Total),
		snapshotResponse: newSnapshotResponse(snap),
	}
}
