package upstream

import (
	"net/url"
	"strconv"
	"time"
)

// DateLayout is the yyyy-MM-dd format every date filter is sent in.
const DateLayout = "2006-01-02"

// ListQuery list endpoint parameters
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	// Extra holds entity specific filters such as status or user_id.
	Extra map[string]string
}

// Values encodes the query. Empty values are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.StartDate != nil {
		v.Set("start_date", FormatDate(*q.StartDate))
	}
	if q.EndDate != nil {
		v.Set("end_date", FormatDate(*q.EndDate))
	}
	for k, val := range q.Extra {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a yyyy-MM-dd date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}
