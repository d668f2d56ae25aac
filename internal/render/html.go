package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

//go:embed templates/*.html
var templateFS embed.FS

// EditorItem is one editable row of the item table.
type EditorItem struct {
	ID          string
	Description string
	Quantity    int64
	UnitPrice   string
	Total       string
}

// AdjustmentInput carries the current discount or tax inputs.
type AdjustmentInput struct {
	Target  string
	Label   string
	Amount  string
	Percent bool
}

// EditorView feeds the editor page.
type EditorView struct {
	Doc         *invoice.Document
	Items       []EditorItem
	CanRemove   bool
	Adjustments []AdjustmentInput
	Preview     Preview
	Filename    string
}

type printView struct {
	Preview  Preview
	Filename string
}

// HTML renders the editor page, the preview fragment and the print page.
type HTML struct {
	editor  *template.Template
	preview *template.Template
	print   *template.Template
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTML, error) {
	editor, err := template.ParseFS(templateFS, "templates/editor.html", "templates/preview.html")
	if err != nil {
		return nil, fmt.Errorf("parse editor template: %w", err)
	}
	preview, err := template.ParseFS(templateFS, "templates/preview.html")
	if err != nil {
		return nil, fmt.Errorf("parse preview template: %w", err)
	}
	printPage, err := template.ParseFS(templateFS, "templates/print.html", "templates/preview.html")
	if err != nil {
		return nil, fmt.Errorf("parse print template: %w", err)
	}
	return &HTML{editor: editor, preview: preview, print: printPage}, nil
}

// MustHTML is NewHTML for static wiring; the templates are embedded so a
// parse failure is a programming error.
func MustHTML() *HTML {
	h, err := NewHTML()
	if err != nil {
		panic(err)
	}
	return h
}

// Editor writes the full editing page.
func (h *HTML) Editor(w io.Writer, doc *invoice.Document, totals invoice.Totals) error {
	view := EditorView{
		Doc:       doc,
		Items:     make([]EditorItem, 0, len(doc.Items)),
		CanRemove: doc.CanRemoveItems(),
		Adjustments: []AdjustmentInput{
			adjustmentInput(string(invoice.TargetDiscount), labelDiscountInput, doc.Discount),
			adjustmentInput(string(invoice.TargetTax), labelTaxInput, doc.Tax),
		},
		Preview:  BuildPreview(doc, totals),
		Filename: Filename(doc.Number),
	}
	for _, it := range doc.Items {
		view.Items = append(view.Items, EditorItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   FormatNumber(it.UnitPrice),
			Total:       FormatIDR(it.Total),
		})
	}
	return execute(w, h.editor, "editor.html", view)
}

// Preview writes the preview fragment only.
func (h *HTML) Preview(w io.Writer, doc *invoice.Document, totals invoice.Totals) error {
	return execute(w, h.preview, "preview", BuildPreview(doc, totals))
}

// Print writes a standalone page that opens the browser print dialog on load.
func (h *HTML) Print(w io.Writer, doc *invoice.Document, totals invoice.Totals) error {
	return execute(w, h.print, "print.html", printView{
		Preview:  BuildPreview(doc, totals),
		Filename: Filename(doc.Number),
	})
}

// execute renders into a buffer first so a template error never leaves a
// half-written response.
func execute(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func adjustmentInput(target, label string, a invoice.Adjustment) AdjustmentInput {
	return AdjustmentInput{
		Target:  target,
		Label:   label,
		Amount:  FormatNumber(a.Amount),
		Percent: a.Unit != invoice.UnitFixed,
	}
}
