package render

// Indonesian labels and placeholders used by the preview, the print page and the PDF.
const (
	labelTitle          = "INVOICE"
	labelFrom           = "Dari:"
	labelTo             = "Kepada:"
	labelInvoiceNumber  = "Nomor Invoice"
	labelDate           = "Tanggal"
	labelDueDate        = "Jatuh Tempo"
	labelDescription    = "Deskripsi"
	labelQty            = "Qty"
	labelUnitPrice      = "Harga Satuan"
	labelTotal          = "Total"
	labelSubtotal       = "Subtotal:"
	labelGrandTotal     = "Total:"
	labelPaymentDetails = "Detail Pembayaran:"
	labelBank           = "Bank:"
	labelAccountNumber  = "No. Rekening:"
	labelAccountName    = "Atas Nama:"
	labelMethod         = "Metode:"
	labelNotes          = "Catatan:"
	labelPhone          = "Tel:"
	labelEmail          = "Email:"
	labelDiscountInput  = "Diskon"
	labelTaxInput       = "Pajak"

	placeholderCompanyName    = "Nama Perusahaan"
	placeholderCompanyAddress = "Alamat Perusahaan"
	placeholderClientName     = "Nama Klien"
	placeholderClientAddress  = "Alamat Klien"
	placeholderInvoiceNumber  = "INV-001"
	placeholderDescription    = "Deskripsi item"
)
