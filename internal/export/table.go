// Package export renders task lists as fixed-column PDF tables.
package export

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// Placeholder fills cells whose field is empty.
const Placeholder = "N/A"

type Column struct {
	Header string
	Width  float64
}

const (
	rowHeight    = 7.0
	headerHeight = 8.0
	cellPadding  = 2.0
)

// WriteTable renders title and rows on landscape A4 pages. Page breaks are
// left to the renderer.
func WriteTable(w io.Writer, title string, columns []Column, rows [][]string) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(22, 160, 133)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range columns {
		pdf.CellFormat(col.Width, headerHeight, tr(col.Header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, col := range columns {
			cell := Placeholder
			if i < len(row) {
				cell = orPlaceholder(row[i])
			}
			pdf.CellFormat(col.Width, rowHeight, tr(fit(pdf, cell, col.Width-cellPadding)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// fit shortens text until it fits in width, marking the cut with "...".
func fit(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}

	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
