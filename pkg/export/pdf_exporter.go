package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular PDF with a centered title,
// generation timestamp and an optional meta header block.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Ext returns the file extension for PDF output.
func (e *PDFExporter) Ext() string { return "pdf" }

// Render creates the PDF document.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(data.Title), "", 1, "C", false, 0, "")
	}
	if !data.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, "Generated: "+data.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if len(data.Meta) > 0 {
		for _, m := range data.Meta {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(45, 7, m.Label+":", "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 7, m.Value, "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
