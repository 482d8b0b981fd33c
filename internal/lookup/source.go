package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekamauln/livo-next/internal/upstream"
)

// Lookup kinds.
const (
	KindProducts = "products"
	KindBoxes    = "boxes"
)

var ErrUnknownKind = errors.New("unknown lookup kind")

// Item is one autocomplete option.
type Item struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SearchFunc returns at most limit items matching term.
type SearchFunc func(ctx context.Context, term string, limit int) ([]Item, error)

// Catalog is the upstream list endpoints lookups search.
type Catalog interface {
	ListProducts(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Product], error)
	ListBoxes(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Box], error)
}

// Searchers maps each kind to its upstream search.
func Searchers(c Catalog) map[string]SearchFunc {
	return map[string]SearchFunc{
		KindProducts: func(ctx context.Context, term string, limit int) ([]Item, error) {
			p, err := c.ListProducts(ctx, upstream.ListQuery{Page: 1, Limit: limit, Search: term})
			if err != nil {
				return nil, err
			}
			items := make([]Item, 0, len(p.Records))
			for _, r := range p.Records {
				label := r.Name
				if r.Variant != "" {
					label = fmt.Sprintf("%s (%s)", r.Name, r.Variant)
				}
				items = append(items, Item{ID: r.ID, Code: r.SKU, Label: label})
			}
			return items, nil
		},
		KindBoxes: func(ctx context.Context, term string, limit int) ([]Item, error) {
			p, err := c.ListBoxes(ctx, upstream.ListQuery{Page: 1, Limit: limit, Search: term})
			if err != nil {
				return nil, err
			}
			items := make([]Item, 0, len(p.Records))
			for _, r := range p.Records {
				items = append(items, Item{ID: r.ID, Code: r.Code, Label: r.Name})
			}
			return items, nil
		},
	}
}
