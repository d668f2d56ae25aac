package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

// CurrencyCode is the ISO code of the only supported currency.
const CurrencyCode = "IDR"

// FormatIDR renders an amount as Indonesian Rupiah without subunits, e.g.
// "Rp 250.000". Negative amounts keep their sign: "-Rp 25.000".
// Values beyond int64 are grouped from their exact digits.
func FormatIDR(amount invoice.Amount) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	n := rounded.BigInt()
	if n.IsInt64() {
		return sign + "Rp " + idPrinter.Sprintf("%d", n.Int64())
	}
	return sign + "Rp " + groupThousands(n.String())
}

var idPrinter = message.NewPrinter(language.Indonesian)

// groupThousands inserts the Indonesian group separator into a string of
// digits.
func groupThousands(digits string) string {
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatNumber renders a raw adjustment value the way the user typed it, without
// trailing zeros.
func FormatNumber(v decimal.Decimal) string {
	return v.String()
}

// FormatDate renders an ISO date (YYYY-MM-DD) in Indonesian short form, e.g.
// "18/10/2026". Empty or malformed dates render as "-".
func FormatDate(value string) string {
	t, err := time.Parse(invoice.DateLayout, value)
	if err != nil {
		return "-"
	}
	return t.Format("2/1/2006")
}
