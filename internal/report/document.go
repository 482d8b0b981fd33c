package report

import (
	"context"
	"strconv"
	"time"
)

// Column of a rendered table. Width is a relative weight.
type Column struct {
	Header string
	Width  float64
}

type Table struct {
	Title   string
	Sheet   string
	Columns []Column
	Rows    [][]string
}

// Line is a key/value pair printed outside the tables.
type Line struct {
	Key   string
	Value string
}

// Document is the laid-out report handed to a renderer. It is built once per
// export and not modified afterwards.
type Document struct {
	Name        string
	Title       string
	Period      string
	EntityLabel string
	Entity      string
	Search      string
	RecordCount int
	GeneratedAt time.Time
	Main        Table
	Detail      *Table
	Totals      []Line
}

// signatureLine is left blank for manual sign-off.
const signatureLine = "______________________"

// PDFMeta lists the metadata block of the PDF: optional lines only when set.
func (d *Document) PDFMeta() []Line {
	var lines []Line
	if d.Period != "" {
		lines = append(lines, Line{"Period", d.Period})
	}
	if d.Entity != "" && d.EntityLabel != "" {
		lines = append(lines, Line{d.EntityLabel, d.Entity})
	}
	if d.Search != "" {
		lines = append(lines, Line{"Search", d.Search})
	}
	lines = append(lines,
		Line{"Total Records", strconv.Itoa(d.RecordCount)},
		Line{"Generated At", d.GeneratedAt.Format(GeneratedLayout)},
		Line{"Checker", signatureLine},
	)
	return lines
}

// InfoRows lists the rows of the spreadsheet "Information" sheet.
func (d *Document) InfoRows() []Line {
	period := d.Period
	if period == "" {
		period = "All"
	}
	lines := []Line{{"Period", period}}
	if d.EntityLabel != "" {
		entity := d.Entity
		if entity == "" {
			entity = "All"
		}
		lines = append(lines, Line{d.EntityLabel, entity})
	}
	if d.Search != "" {
		lines = append(lines, Line{"Search", d.Search})
	}
	lines = append(lines,
		Line{"Total Records", strconv.Itoa(d.RecordCount)},
		Line{"Generated At", d.GeneratedAt.Format(GeneratedLayout)},
		Line{"Checker", signatureLine},
	)
	return lines
}

// Report is a type-erased Definition.
type Report interface {
	Key() string
	Subject() string
	EntityLabel() string
	Collect(ctx context.Context, filter Filter, pageSize, maxPages int, now time.Time) (*Document, error)
}

// Definition describes one report over records of type T.
type Definition[T any] struct {
	ID          string
	Name        string
	Title       string
	Noun        string
	Sheet       string
	Entity      string
	EntityParam string
	Columns     []Column
	Row         func(T) []string

	DetailTitle   string
	DetailSheet   string
	DetailColumns []Column
	// Details flattens one record's child items, each row carrying the parent's
	// identifying fields.
	Details func(T) [][]string

	Totals func([]T) []Line
	Fetch  FetchFunc[T]
}

func (d Definition[T]) Key() string         { return d.ID }
func (d Definition[T]) Subject() string     { return d.Noun }
func (d Definition[T]) EntityLabel() string { return d.Entity }

// Collect accumulates every page for filter and builds the document.
func (d Definition[T]) Collect(ctx context.Context, filter Filter, pageSize, maxPages int, now time.Time) (*Document, error) {
	records, err := Accumulate(ctx, d.Fetch, filter, pageSize, maxPages)
	if err != nil {
		return nil, err
	}
	return d.Build(records, filter, now), nil
}

var indexColumn = Column{Header: "No", Width: 8}

// Build lays out records. The first column of every table is a 1-based row index.
func (d Definition[T]) Build(records []T, filter Filter, now time.Time) *Document {
	doc := &Document{
		Name:        d.Name,
		Title:       d.Title,
		EntityLabel: d.Entity,
		Entity:      filter.entityText(),
		Search:      filter.Search,
		RecordCount: len(records),
		GeneratedAt: now,
		Main: Table{
			Title:   d.Title,
			Sheet:   d.Sheet,
			Columns: append([]Column{indexColumn}, d.Columns...),
			Rows:    make([][]string, 0, len(records)),
		},
	}
	if filter.HasPeriod() {
		doc.Period = filter.Period()
	}

	for i, rec := range records {
		row := append([]string{strconv.Itoa(i + 1)}, d.Row(rec)...)
		doc.Main.Rows = append(doc.Main.Rows, row)
	}

	if d.Details != nil {
		detail := &Table{
			Title:   d.DetailTitle,
			Sheet:   d.DetailSheet,
			Columns: append([]Column{indexColumn}, d.DetailColumns...),
		}
		n := 0
		for _, rec := range records {
			for _, child := range d.Details(rec) {
				n++
				detail.Rows = append(detail.Rows, append([]string{strconv.Itoa(n)}, child...))
			}
		}
		if n > 0 {
			doc.Detail = detail
		}
	}

	if d.Totals != nil {
		doc.Totals = d.Totals(records)
	}
	return doc
}
