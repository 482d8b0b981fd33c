package report

import (
	"math"
	"testing"
	"time"

	"github.com/ekamauln/livo-next/internal/upstream"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{100000, "100.000"},
		{-2500, "-2.500"},
		{math.MinInt64, "-9.223.372.036.854.775.808"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilenameTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 4, 9, 5, 7, 0, time.UTC)
	a := Filename("OrderReport", "pdf", at)
	b := Filename("OrderReport", "pdf", at.Add(time.Second))
	if a != "OrderReport_20260304_090507.pdf" {
		t.Fatalf("filename = %q", a)
	}
	if a == b {
		t.Fatalf("exports one second apart share filename %q", a)
	}
}

func TestFilterPeriodAndDescribe(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   Filter
		period   string
		describe string
	}{
		{"none", Filter{}, "", "the selected filters"},
		{"range", Filter{DateFrom: from, DateTo: to}, "2026-01-01 to 2026-01-31", "period 2026-01-01 to 2026-01-31"},
		{"from only", Filter{DateFrom: from}, "from 2026-01-01", "period from 2026-01-01"},
		{"until only", Filter{DateTo: to}, "until 2026-01-31", "period until 2026-01-31"},
		{"entity display", Filter{Entity: "7", EntityDisplay: "Budi"}, "", `picker "Budi"`},
		{"search", Filter{Search: "INV"}, "", `search "INV"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Period(); got != tt.period {
				t.Errorf("Period() = %q, want %q", got, tt.period)
			}
			if got := tt.filter.Describe("Picker"); got != tt.describe {
				t.Errorf("Describe() = %q, want %q", got, tt.describe)
			}
		})
	}
}

func TestFilterQuery(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f := Filter{Search: "abc", DateFrom: from, Entity: "packed"}
	q := f.Query(3, 100, "status")
	v := q.Values()

	if v.Get("page") != "3" || v.Get("limit") != "100" {
		t.Fatalf("page/limit = %s/%s", v.Get("page"), v.Get("limit"))
	}
	if v.Get("start_date") != upstream.FormatDate(from) || v.Has("end_date") {
		t.Fatalf("dates = %q/%q", v.Get("start_date"), v.Get("end_date"))
	}
	if v.Get("search") != "abc" || v.Get("status") != "packed" {
		t.Fatalf("search/status = %q/%q", v.Get("search"), v.Get("status"))
	}
}
