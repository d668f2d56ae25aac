package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

func TestPDFProducesDocument(t *testing.T) {
	doc := sampleDocument(t)
	doc.Company.Name = "PT Sinar Jaya"
	doc.Company.Address = "Jl. Merdeka 1\nJakarta"
	doc.Payment = invoice.PaymentDetails{BankName: "BCA", AccountNumber: "1234567890"}
	doc.Notes = "Pembayaran paling lambat 14 hari."

	out, err := PDFBytes(doc, doc.Totals())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	require.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestPDFHandlesLongDescriptions(t *testing.T) {
	doc := invoice.New(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	_, err := doc.UpdateItem("1", invoice.DescriptionChange{Value: strings.Repeat("Jasa pemeliharaan server bulanan ", 20)})
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		doc.AddItem()
	}

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, doc, doc.Totals()))
	require.Greater(t, buf.Len(), 0)
}
