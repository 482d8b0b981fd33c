package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const infoSheet = "Information"

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

type sheetStyles struct {
	title  int
	header int
	data   int
	key    int
	value  int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	if s.key, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}},
		Border: thinBorder,
	}); err != nil {
		return nil, err
	}
	if s.value, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	return &s, nil
}

// RenderXLSX builds the workbook: an Information sheet, the main table sheet and,
// when any record has child items, a detail sheet.
func RenderXLSX(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", infoSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeInfoSheet(f, doc, styles); err != nil {
		return nil, err
	}
	if err := writeTableSheet(f, doc.Main, doc.Totals, styles); err != nil {
		return nil, err
	}
	if doc.Detail != nil {
		if err := writeTableSheet(f, *doc.Detail, nil, styles); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// setCell writes one styled cell.
func setCell(f *excelize.File, sheet, cell string, value interface{}, style int) error {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("style %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// writeLines writes key/value pairs in columns A and B starting at row.
func writeLines(f *excelize.File, sheet string, row int, lines []Line, keyStyle, valueStyle int) error {
	for i, line := range lines {
		r := row + i
		if err := setCell(f, sheet, fmt.Sprintf("A%d", r), line.Key, keyStyle); err != nil {
			return err
		}
		if err := setCell(f, sheet, fmt.Sprintf("B%d", r), line.Value, valueStyle); err != nil {
			return err
		}
	}
	return nil
}

func writeInfoSheet(f *excelize.File, doc *Document, styles *sheetStyles) error {
	if err := f.SetCellValue(infoSheet, "A1", doc.Title); err != nil {
		return err
	}
	if err := f.MergeCell(infoSheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(infoSheet, "A1", "B1", styles.title); err != nil {
		return err
	}
	if err := writeLines(f, infoSheet, 3, doc.InfoRows(), styles.key, styles.value); err != nil {
		return err
	}

	if err := f.SetColWidth(infoSheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(infoSheet, "B", "B", 42)
}

func writeTableSheet(f *excelize.File, t Table, totals []Line, styles *sheetStyles) error {
	if _, err := f.NewSheet(t.Sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", t.Sheet, err)
	}

	for i, c := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := setCell(f, t.Sheet, cell, c.Header, styles.header); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.Sheet, col, col, columnWidth(c)); err != nil {
			return fmt.Errorf("size column %s of %q: %w", col, t.Sheet, err)
		}
	}

	for r, row := range t.Rows {
		for i := range t.Columns {
			var v string
			if i < len(row) {
				v = row[i]
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Sheet, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", t.Sheet, cell, err)
			}
		}
	}
	if len(t.Rows) > 0 && len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), len(t.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Sheet, "A2", last, styles.data); err != nil {
			return fmt.Errorf("style sheet %q: %w", t.Sheet, err)
		}
	}

	// summary rows below the table
	if len(totals) == 0 {
		return nil
	}
	if err := f.SetColWidth(t.Sheet, "A", "A", 18); err != nil {
		return err
	}
	return writeLines(f, t.Sheet, len(t.Rows)+3, totals, styles.key, styles.data)
}

func columnWidth(c Column) float64 {
	w := c.Width * 0.9
	if floor := float64(len(c.Header)) + 4; w < floor {
		w = floor
	}
	return w
}
