package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// detailBreakRatio: the detail table starts on a new page when the cursor is
// past this share of the page height.
const detailBreakRatio = 0.83

const (
	pdfMargin    = 10.0
	pdfRowHeight = 6.0
	pdfFont      = "Helvetica"
)

func needsNewPage(y, pageHeight float64) bool {
	return y > pageHeight*detailBreakRatio
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// RenderPDF lays out doc as A4 portrait pages.
func RenderPDF(doc *Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("livo-next", true)
	pdf.SetCreationDate(doc.GeneratedAt)

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 9, w.tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	w.meta(doc.PDFMeta())
	pdf.Ln(4)
	w.table(doc.Main)

	if doc.Detail != nil {
		_, pageHeight := pdf.GetPageSize()
		if needsNewPage(pdf.GetY(), pageHeight) {
			pdf.AddPage()
		} else {
			pdf.Ln(6)
		}
		w.table(*doc.Detail)
	}

	if len(doc.Totals) > 0 {
		pdf.Ln(4)
		w.meta(doc.Totals)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) meta(lines []Line) {
	for _, l := range lines {
		w.ensureRoom(pdfRowHeight, nil)
		w.pdf.SetFont(pdfFont, "B", 9)
		w.pdf.CellFormat(45, pdfRowHeight, w.tr(l.Key), "1", 0, "L", false, 0, "")
		w.pdf.SetFont(pdfFont, "", 9)
		w.pdf.CellFormat(90, pdfRowHeight, w.tr(l.Value), "1", 1, "L", false, 0, "")
	}
}

func (w *pdfWriter) columnWidths(cols []Column) []float64 {
	pageWidth, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	avail := pageWidth - left - right

	var sum float64
	for _, c := range cols {
		sum += c.Width
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		if sum <= 0 {
			widths[i] = avail / float64(len(cols))
			continue
		}
		widths[i] = avail * c.Width / sum
	}
	return widths
}

func (w *pdfWriter) header(t Table, widths []float64) {
	w.pdf.SetFont(pdfFont, "B", 8)
	w.pdf.SetFillColor(217, 217, 217)
	for i, c := range t.Columns {
		w.pdf.CellFormat(widths[i], pdfRowHeight+1, w.fit(c.Header, widths[i]), "1", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)
	w.pdf.SetFont(pdfFont, "", 8)
}

// ensureRoom starts a new page when h does not fit; repeat redraws a table
// header on the new page.
func (w *pdfWriter) ensureRoom(h float64, repeat func()) {
	_, pageHeight := w.pdf.GetPageSize()
	_, _, _, bottom := w.pdf.GetMargins()
	if w.pdf.GetY()+h <= pageHeight-bottom {
		return
	}
	w.pdf.AddPage()
	if repeat != nil {
		repeat()
	}
}

func (w *pdfWriter) table(t Table) {
	widths := w.columnWidths(t.Columns)

	if t.Title != "" {
		w.ensureRoom(2*pdfRowHeight+2, nil)
		w.pdf.SetFont(pdfFont, "B", 11)
		w.pdf.CellFormat(0, 7, w.tr(t.Title), "", 1, "L", false, 0, "")
	}
	w.ensureRoom(2*pdfRowHeight+1, nil)
	w.header(t, widths)

	for _, row := range t.Rows {
		w.ensureRoom(pdfRowHeight, func() { w.header(t, widths) })
		for i := range t.Columns {
			var v string
			if i < len(row) {
				v = row[i]
			}
			w.pdf.CellFormat(widths[i], pdfRowHeight, w.fit(v, widths[i]), "1", 0, "C", false, 0, "")
		}
		w.pdf.Ln(-1)
	}
}

// fit truncates s with an ellipsis so it stays inside a cell of width.
func (w *pdfWriter) fit(s string, width float64) string {
	limit := width - 2
	if out := w.tr(s); w.pdf.GetStringWidth(out) <= limit {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && w.pdf.GetStringWidth(w.tr(string(r)+"...")) > limit {
		r = r[:len(r)-1]
	}
	return w.tr(string(r) + "...")
}
