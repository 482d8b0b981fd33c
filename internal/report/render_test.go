package report

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDocument(withDetail bool) *Document {
	doc := &Document{
		Name:        "OrderReport",
		Title:       "Order Report",
		Period:      "2026-05-01 to 2026-05-20",
		EntityLabel: "Status",
		Entity:      "packed",
		RecordCount: 2,
		GeneratedAt: testNow,
		Main: Table{
			Title:   "Order Report",
			Sheet:   "Orders",
			Columns: []Column{{"No", 8}, {"Order ID", 24}, {"Status", 16}},
			Rows:    [][]string{{"1", "INV-1", "packed"}, {"2", "INV-2", "packed"}},
		},
		Totals: []Line{{"Total Orders", "2"}},
	}
	if withDetail {
		doc.Detail = &Table{
			Title:   "Order Details",
			Sheet:   "Order Details",
			Columns: []Column{{"No", 8}, {"Order ID", 22}, {"SKU", 16}},
			Rows:    [][]string{{"1", "INV-1", "SKU-1"}},
		}
	}
	return doc
}

func TestRenderXLSXSheets(t *testing.T) {
	body, err := RenderXLSX(sampleDocument(true))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Information", "Orders", "Order Details"}, f.GetSheetList())

	title, _ := f.GetCellValue("Information", "A1")
	assert.Equal(t, "Order Report", title)
	period, _ := f.GetCellValue("Information", "B3")
	assert.Equal(t, "2026-05-01 to 2026-05-20", period)

	header, _ := f.GetCellValue("Orders", "B1")
	assert.Equal(t, "Order ID", header)
	second, _ := f.GetCellValue("Orders", "B3")
	assert.Equal(t, "INV-2", second)
	totalKey, _ := f.GetCellValue("Orders", "A5")
	assert.Equal(t, "Total Orders", totalKey)

	sku, _ := f.GetCellValue("Order Details", "C2")
	assert.Equal(t, "SKU-1", sku)
}

func cellStyle(t *testing.T, f *excelize.File, sheet, cell string) *excelize.Style {
	t.Helper()
	idx, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(idx)
	require.NoError(t, err)
	return style
}

func assertThinBorders(t *testing.T, style *excelize.Style) {
	t.Helper()
	require.Len(t, style.Border, 4)
	sides := map[string]bool{}
	for _, b := range style.Border {
		assert.Equal(t, 1, b.Style, "border %s", b.Type)
		sides[b.Type] = true
	}
	for _, side := range []string{"left", "top", "right", "bottom"} {
		assert.True(t, sides[side], "missing %s border", side)
	}
}

func TestRenderXLSXStyles(t *testing.T) {
	body, err := RenderXLSX(sampleDocument(true))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	header := cellStyle(t, f, "Orders", "B1")
	assertThinBorders(t, header)
	require.NotNil(t, header.Font)
	assert.True(t, header.Font.Bold)
	require.NotNil(t, header.Alignment)
	assert.Equal(t, "center", header.Alignment.Horizontal)
	assert.Equal(t, "pattern", header.Fill.Type)
	assert.Equal(t, 1, header.Fill.Pattern)
	require.Len(t, header.Fill.Color, 1)
	assert.Equal(t, "D9D9D9", strings.ToUpper(strings.TrimPrefix(header.Fill.Color[0], "#")))

	data := cellStyle(t, f, "Orders", "B2")
	assertThinBorders(t, data)
	require.NotNil(t, data.Alignment)
	assert.Equal(t, "center", data.Alignment.Horizontal)
	assert.Equal(t, "center", data.Alignment.Vertical)
	if data.Font != nil {
		assert.False(t, data.Font.Bold)
	}

	detailHeader := cellStyle(t, f, "Order Details", "A1")
	assertThinBorders(t, detailHeader)
}

func TestRenderXLSXWithoutDetail(t *testing.T) {
	body, err := RenderXLSX(sampleDocument(false))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Information", "Orders"}, f.GetSheetList())
}

func TestDocumentPDFMeta(t *testing.T) {
	doc := sampleDocument(false)
	doc.Search = "INV"
	assert.Equal(t, []Line{
		{"Period", "2026-05-01 to 2026-05-20"},
		{"Status", "packed"},
		{"Search", "INV"},
		{"Total Records", "2"},
		{"Generated At", "20-05-2026 14:30:00"},
		{"Checker", signatureLine},
	}, doc.PDFMeta())

	doc.Period = ""
	doc.Search = ""
	assert.Equal(t, []Line{
		{"Status", "packed"},
		{"Total Records", "2"},
		{"Generated At", "20-05-2026 14:30:00"},
		{"Checker", signatureLine},
	}, doc.PDFMeta())
}

func TestBuildPeriodOnlyWhenDated(t *testing.T) {
	def := Definition[int]{Name: "Numbers", Title: "Numbers", Row: func(n int) []string { return []string{strconv.Itoa(n)} }}

	doc := def.Build([]int{1}, Filter{}, testNow)
	assert.Empty(t, doc.Period)
	assert.Equal(t, "Total Records", doc.PDFMeta()[0].Key)
	assert.Equal(t, Line{"Period", "All"}, doc.InfoRows()[0])

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	doc = def.Build([]int{1}, Filter{DateFrom: from}, testNow)
	assert.Equal(t, "from 2026-05-01", doc.Period)
	assert.Equal(t, Line{"Period", "from 2026-05-01"}, doc.PDFMeta()[0])
}

func TestRenderPDF(t *testing.T) {
	body, err := RenderPDF(sampleDocument(true))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestRenderPDFManyRows(t *testing.T) {
	doc := sampleDocument(true)
	doc.Main.Rows = nil
	for i := 0; i < 300; i++ {
		doc.Main.Rows = append(doc.Main.Rows, []string{"1", strings.Repeat("X", 80), "packed"})
	}
	body, err := RenderPDF(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestNeedsNewPage(t *testing.T) {
	const h = 297.0
	assert.False(t, needsNewPage(100, h))
	assert.False(t, needsNewPage(h*0.83, h))
	assert.True(t, needsNewPage(h*0.84, h))
}

func TestRenderArtifacts(t *testing.T) {
	doc := sampleDocument(false)

	pdf, err := render(doc, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "OrderReport_20260520_143000.pdf", pdf.Filename)
	assert.True(t, pdf.Inline)
	assert.Equal(t, `inline; filename="OrderReport_20260520_143000.pdf"`, pdf.Disposition())

	xlsx, err := render(doc, FormatXLSX)
	require.NoError(t, err)
	assert.False(t, xlsx.Inline)
	assert.Equal(t, contentTypeXLSX, xlsx.ContentType)

	_, err = render(doc, Format("csv"))
	assert.Error(t, err)
}
