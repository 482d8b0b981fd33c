package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekamauln/livo-next/internal/upstream"
)

// Filter is the search and date state captured when an export starts. It is a
// plain value: every page request of one run receives the same copy.
type Filter struct {
	Search   string
	DateFrom time.Time
	DateTo   time.Time
	// Entity is the report specific filter value (status, picker, user id...).
	Entity string
	// EntityDisplay is what users see for Entity, e.g. a user's name for an id.
	EntityDisplay string
}

func (f Filter) HasPeriod() bool {
	return !f.DateFrom.IsZero() || !f.DateTo.IsZero()
}

// Period renders the date range, empty when no date filter is set.
func (f Filter) Period() string {
	switch {
	case !f.DateFrom.IsZero() && !f.DateTo.IsZero():
		return upstream.FormatDate(f.DateFrom) + " to " + upstream.FormatDate(f.DateTo)
	case !f.DateFrom.IsZero():
		return "from " + upstream.FormatDate(f.DateFrom)
	case !f.DateTo.IsZero():
		return "until " + upstream.FormatDate(f.DateTo)
	}
	return ""
}

func (f Filter) entityText() string {
	if f.EntityDisplay != "" {
		return f.EntityDisplay
	}
	return f.Entity
}

// Describe names the active filters for user-facing messages.
func (f Filter) Describe(entityLabel string) string {
	var parts []string
	if f.HasPeriod() {
		parts = append(parts, "period "+f.Period())
	}
	if f.Entity != "" {
		label := strings.ToLower(entityLabel)
		if label == "" {
			label = "filter"
		}
		parts = append(parts, fmt.Sprintf("%s %q", label, f.entityText()))
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.Search))
	}
	if len(parts) == 0 {
		return "the selected filters"
	}
	return strings.Join(parts, ", ")
}

// Query builds the upstream list query for one page. entityParam is the query
// parameter the report's entity filter is sent as.
func (f Filter) Query(page, pageSize int, entityParam string) upstream.ListQuery {
	q := upstream.ListQuery{
		Page:   page,
		Limit:  pageSize,
		Search: f.Search,
	}
	if !f.DateFrom.IsZero() {
		from := f.DateFrom
		q.StartDate = &from
	}
	if !f.DateTo.IsZero() {
		to := f.DateTo
		q.EndDate = &to
	}
	if entityParam != "" && f.Entity != "" {
		q.Extra = map[string]string{entityParam: f.Entity}
	}
	return q
}
