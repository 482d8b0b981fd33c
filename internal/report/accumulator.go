package report

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInconsistentTotal = errors.New("record count does not match reported total")
	ErrTooManyPages      = errors.New("report exceeds page limit")
)

// Page one page of records plus the total the source reports for the query.
type Page[T any] struct {
	Records []T
	Total   int
}

// FetchFunc requests a single page from a paginated source.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int, filter Filter) (*Page[T], error)

// Accumulate collects every record matching filter, one page at a time, in
// page-then-within-page order. Pages are fetched sequentially. Any failed page
// aborts the run and the partial slice is discarded. maxPages <= 0 disables the
// page cap.
func Accumulate[T any](ctx context.Context, fetch FetchFunc[T], filter Filter, pageSize, maxPages int) ([]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	var records []T
	total := 0
	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			return nil, fmt.Errorf("%w: more than %d pages of %d", ErrTooManyPages, maxPages, pageSize)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := fetch(ctx, page, pageSize, filter)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if res == nil {
			return nil, fmt.Errorf("fetch page %d: empty result", page)
		}

		if page == 1 {
			total = res.Total
		} else if res.Total != total {
			return nil, fmt.Errorf("%w: page %d reports %d, page 1 reported %d", ErrInconsistentTotal, page, res.Total, total)
		}
		records = append(records, res.Records...)

		totalPages := (total + pageSize - 1) / pageSize
		if page >= totalPages {
			break
		}
	}

	if len(records) != total {
		return nil, fmt.Errorf("%w: got %d, reported %d", ErrInconsistentTotal, len(records), total)
	}
	return records, nil
}
