// Package orders holds business rules applied before order changes reach the
// upstream API.
package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ekamauln/livo-next/internal/upstream"
)

// ErrNotReadyToPick rejects changes to an order that has left "ready to pick".
var ErrNotReadyToPick = errors.New("order details can only be changed while the order is ready to pick")

// CanEditDetails reports whether the order's details may be changed.
func CanEditDetails(o *upstream.Order) error {
	if o == nil {
		return errors.New("order is required")
	}
	if !strings.EqualFold(strings.TrimSpace(o.Status), upstream.OrderStatusReadyToPick) {
		return fmt.Errorf("%w (current status: %s)", ErrNotReadyToPick, o.Status)
	}
	return nil
}

// NormalizeDetails trims SKUs and merges lines that repeat a SKU, summing their
// quantities. Order of first appearance is kept.
func NormalizeDetails(in []upstream.OrderDetailInput) []upstream.OrderDetailInput {
	out := make([]upstream.OrderDetailInput, 0, len(in))
	index := make(map[string]int, len(in))
	for _, d := range in {
		d.SKU = strings.TrimSpace(d.SKU)
		if i, ok := index[strings.ToUpper(d.SKU)]; ok {
			out[i].Quantity += d.Quantity
			continue
		}
		index[strings.ToUpper(d.SKU)] = len(out)
		out = append(out, d)
	}
	return out
}
