package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders datasets into a tabular A4 PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title, optional subtitle and the table body.
// The footer row is printed in bold.
func (e *PDFExporter) Render(data Dataset, title, subtitle string) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	colWidth := pageWidth / float64(len(data.Headers))
	row := func(cells []string, height float64, align string) {
		for _, cell := range cells {
			pdf.CellFormat(colWidth, height, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	row(data.Headers, 8, "C")

	pdf.SetFont("Arial", "", 9)
	for _, r := range data.Rows {
		row(r, 7, "")
	}
	if len(data.Footer) > 0 {
		pdf.SetFont("Arial", "B", 9)
		row(data.Footer, 7, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
