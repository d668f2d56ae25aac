package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

// ErrEmptyPDF is returned when the generator produced no output.
var ErrEmptyPDF = errors.New("pdf export produced no output")

const (
	pdfMargin     = 15.0
	pdfLineHeight = 5.5
	pdfTotalsW    = 80.0
)

// item table column widths in mm; they add up to the A4 content width.
var pdfColumns = [4]float64{90, 20, 35, 35}

// PDF writes doc as a single A4 portrait document. The layout mirrors the
// HTML preview.
func PDF(w io.Writer, doc *invoice.Document, totals invoice.Totals) error {
	p := BuildPreview(doc, totals)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(Filename(doc.Number), true)
	pdf.SetCreator("invoice-generator", true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW, 12, tr(p.Title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// parties side by side
	colW := contentW / 2
	top := pdf.GetY()
	leftBottom := pdfParty(pdf, tr, p.Company, pdfMargin, top, colW-4)
	rightBottom := pdfParty(pdf, tr, p.Client, pdfMargin+colW, top, colW-4)
	pdf.SetXY(pdfMargin, max(leftBottom, rightBottom)+6)

	metaW := contentW / float64(len(p.Meta))
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(55, 65, 81)
	for _, row := range p.Meta {
		pdf.CellFormat(metaW, pdfLineHeight, tr(row.Label), "", 0, "L", false, 0, "")
	}
	pdf.Ln(pdfLineHeight)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(17, 24, 39)
	for _, row := range p.Meta {
		pdf.CellFormat(metaW, 7, tr(row.Value), "", 0, "L", false, 0, "")
	}
	pdf.Ln(12)

	pdfItems(pdf, tr, p)
	pdf.Ln(6)
	pdfTotals(pdf, tr, p, contentW)

	if len(p.Payment) > 0 {
		pdfSection(pdf, tr, p.PaymentHdr, contentW)
		pdf.SetFont("Helvetica", "", 9)
		for i, row := range p.Payment {
			ln := 0
			if i%2 == 1 || i == len(p.Payment)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW/2, pdfLineHeight, tr(row.Label+" "+row.Value), "", ln, "L", false, 0, "")
		}
		pdf.Ln(4)
	}
	if p.Notes != "" {
		pdfSection(pdf, tr, p.NotesHdr, contentW)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, pdfLineHeight, tr(p.Notes), "", "L", false)
	}

	if pdf.Err() {
		return fmt.Errorf("build pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	if buf.Len() == 0 {
		return ErrEmptyPDF
	}
	_, err := buf.WriteTo(w)
	return err
}

// PDFBytes is PDF into memory.
func PDFBytes(doc *invoice.Document, totals invoice.Totals) ([]byte, error) {
	var buf bytes.Buffer
	if err := PDF(&buf, doc, totals); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pdfParty draws a party block at (x, y) and returns the y below it.
func pdfParty(pdf *gofpdf.Fpdf, tr func(string) string, party PartyView, x, y, w float64) float64 {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(55, 65, 81)
	pdf.CellFormat(w, 6, tr(party.Heading), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(17, 24, 39)
	pdf.CellFormat(w, pdfLineHeight, tr(party.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetX(x)
	pdf.MultiCell(w, pdfLineHeight, tr(party.Address), "", "L", false)
	if party.Phone != "" {
		pdf.SetX(x)
		pdf.CellFormat(w, pdfLineHeight, tr(labelPhone+" "+party.Phone), "", 2, "L", false, 0, "")
	}
	if party.Email != "" {
		pdf.SetX(x)
		pdf.CellFormat(w, pdfLineHeight, tr(labelEmail+" "+party.Email), "", 2, "L", false, 0, "")
	}
	pdf.SetTextColor(17, 24, 39)
	return pdf.GetY()
}

func pdfItems(pdf *gofpdf.Fpdf, tr func(string) string, p Preview) {
	aligns := [4]string{"L", "C", "R", "R"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetDrawColor(229, 231, 235)
	for i, title := range p.Columns {
		pdf.CellFormat(pdfColumns[i], 8, tr(title), "B", 0, aligns[i], false, 0, "")
	}
	pdf.Ln(-1)

	for _, it := range p.Items {
		lines := pdf.SplitLines([]byte(tr(it.Description)), pdfColumns[0]-2)
		h := float64(max(len(lines), 1))*pdfLineHeight + 3
		x, y := pdf.GetXY()

		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(pdfColumns[0], pdfLineHeight, tr(it.Description), "", "L", false)
		pdf.SetXY(x+pdfColumns[0], y)
		pdf.CellFormat(pdfColumns[1], pdfLineHeight, it.Quantity, "", 0, "C", false, 0, "")
		pdf.CellFormat(pdfColumns[2], pdfLineHeight, it.UnitPrice, "", 0, "R", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(pdfColumns[3], pdfLineHeight, it.Total, "", 0, "R", false, 0, "")

		pdf.SetXY(x, y+h)
		pdf.Line(x, y+h-1, x+pdfColumns[0]+pdfColumns[1]+pdfColumns[2]+pdfColumns[3], y+h-1)
	}
}

func pdfTotals(pdf *gofpdf.Fpdf, tr func(string) string, p Preview, contentW float64) {
	x := pdfMargin + contentW - pdfTotalsW
	row := func(r Row, style string, size float64, red bool) {
		pdf.SetX(x)
		pdf.SetFont("Helvetica", style, size)
		if red {
			pdf.SetTextColor(220, 38, 38)
		}
		pdf.CellFormat(pdfTotalsW/2, 6.5, tr(r.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(pdfTotalsW/2, 6.5, tr(r.Value), "", 1, "R", false, 0, "")
		pdf.SetTextColor(17, 24, 39)
	}
	row(p.Subtotal, "", 10, false)
	if p.Discount != nil {
		row(*p.Discount, "", 10, true)
	}
	if p.Tax != nil {
		row(*p.Tax, "", 10, false)
	}
	y := pdf.GetY() + 1
	pdf.Line(x, y, x+pdfTotalsW, y)
	pdf.Ln(2)
	row(p.GrandTotal, "B", 12, false)
	pdf.Ln(6)
}

func pdfSection(pdf *gofpdf.Fpdf, tr func(string) string, title string, contentW float64) {
	y := pdf.GetY()
	pdf.Line(pdfMargin, y, pdfMargin+contentW, y)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(55, 65, 81)
	pdf.CellFormat(contentW, 6, tr(title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(17, 24, 39)
}
