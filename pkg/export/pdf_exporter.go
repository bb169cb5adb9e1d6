package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Section is a titled table within a PDF document.
type Section struct {
	Title string
	// Widths are relative column weights. Missing weights default to 1.
	Widths []float64
	Data   Dataset
	// Empty is printed instead of the table when Data has no rows.
	Empty string
}

// PDFExporter renders sections into a landscape A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pageWidth   = 297.0
	marginSide  = 10.0
	usableWidth = pageWidth - 2*marginSide
)

// Render creates a PDF with a title, an optional subtitle and each section in order.
func (e *PDFExporter) Render(title, subtitle string, sections ...Section) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(marginSide, 12, marginSide)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, title, "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	for _, section := range sections {
		if err := writeSection(pdf, section); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, section Section) error {
	if len(section.Data.Headers) == 0 {
		return fmt.Errorf("pdf section %q requires at least one header", section.Title)
	}
	if section.Title != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, section.Title, "", 1, "L", false, 0, "")
	}
	if len(section.Data.Rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 7, section.Empty, "", 1, "L", false, 0, "")
		pdf.Ln(2)
		return nil
	}

	widths := columnWidths(section.Widths, len(section.Data.Headers))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range section.Data.Headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range section.Data.Rows {
		for i := range section.Data.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(widths[i], 6, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
	return nil
}

func columnWidths(weights []float64, n int) []float64 {
	total := 0.0
	resolved := make([]float64, n)
	for i := range resolved {
		w := 1.0
		if i < len(weights) && weights[i] > 0 {
			w = weights[i]
		}
		resolved[i] = w
		total += w
	}
	for i := range resolved {
		resolved[i] = resolved[i] / total * usableWidth
	}
	return resolved
}
