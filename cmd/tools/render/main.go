// Command render turns an invoice document stored as JSON into a PDF or an
// HTML print page without running the server.
//
//	go run ./cmd/tools/render -in invoice.json -out invoice.pdf
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/invoice-generator/internal/invoice"
	"github.com/noah-isme/invoice-generator/internal/obs"
	"github.com/noah-isme/invoice-generator/internal/render"
)

func main() {
	in := flag.String("in", "-", "JSON document to read, - for stdin")
	out := flag.String("out", "", "output file; defaults to the invoice filename in the current directory")
	format := flag.String("format", "pdf", "output format: pdf or html")
	flag.Parse()

	logger := obs.NewLogger("console", "info")
	if err := run(*in, *out, *format, logger); err != nil {
		logger.Fatal().Err(err).Msg("render failed")
	}
}

func run(in, out, format string, logger zerolog.Logger) error {
	doc, err := readDocument(in)
	if err != nil {
		return err
	}
	totals := doc.Totals()

	var data []byte
	switch strings.ToLower(format) {
	case "pdf":
		data, err = render.PDFBytes(doc, totals)
		if out == "" {
			out = render.Filename(doc.Number)
		}
	case "html":
		var b strings.Builder
		err = render.MustHTML().Print(&b, doc, totals)
		data = []byte(b.String())
		if out == "" {
			out = strings.TrimSuffix(render.Filename(doc.Number), ".pdf") + ".html"
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info().
		Str("file", out).
		Int("items", len(doc.Items)).
		Str("grand_total", render.FormatIDR(totals.GrandTotal)).
		Msg("invoice rendered")
	return nil
}

func readDocument(path string) (*invoice.Document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var doc invoice.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}
