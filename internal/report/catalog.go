package report

import (
	"context"
	"strconv"
	"time"

	"github.com/ekamauln/livo-next/internal/upstream"
)

// Report keys as used in URLs.
const (
	PickOrders     = "pick-orders"
	BoxesCount     = "boxes-count"
	UserChargeFees = "user-charge-fees"
	Orders         = "orders"
	Returns        = "returns"
)

// Source is the upstream list endpoints the catalog reports page through.
type Source interface {
	ListPickOrders(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.PickOrder], error)
	ListBoxCounts(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.BoxCount], error)
	ListUserChargeFees(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.UserChargeFee], error)
	ListOrders(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Order], error)
	ListReturns(ctx context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Return], error)
}

type listFunc[T any] func(ctx context.Context, q upstream.ListQuery) (*upstream.Page[T], error)

func fetcher[T any](list listFunc[T], entityParam string) FetchFunc[T] {
	return func(ctx context.Context, page, pageSize int, filter Filter) (*Page[T], error) {
		p, err := list(ctx, filter.Query(page, pageSize, entityParam))
		if err != nil {
			return nil, err
		}
		return &Page[T]{Records: p.Records, Total: p.Total}, nil
	}
}

const dateTimeLayout = "02-01-2006 15:04"

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format(dateTimeLayout)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Catalog returns every report backed by src. Timestamps print in loc.
func Catalog(src Source, loc *time.Location) []Report {
	if loc == nil {
		loc = time.UTC
	}
	return []Report{
		PickOrderReport(src, loc),
		BoxesCountReport(src),
		UserChargeFeeReport(src),
		OrderReport(src, loc),
		ReturnReport(src, loc),
	}
}

func PickOrderReport(src Source, loc *time.Location) Definition[upstream.PickOrder] {
	return Definition[upstream.PickOrder]{
		ID:          PickOrders,
		Name:        "PickOrderReport",
		Title:       "Pick Order Report",
		Noun:        "pick orders",
		Sheet:       "Pick Orders",
		Entity:      "Picker",
		EntityParam: "picker",
		Columns: []Column{
			{"Pick Order", 24}, {"Picker", 24}, {"Status", 18}, {"Items", 10}, {"Created At", 24},
		},
		Row: func(p upstream.PickOrder) []string {
			return []string{p.Code, dash(p.Picker), p.Status, strconv.Itoa(len(p.Details)), formatTime(p.CreatedAt, loc)}
		},
		DetailTitle: "Pick Order Details",
		DetailSheet: "Pick Order Details",
		DetailColumns: []Column{
			{"Pick Order", 20}, {"Order ID", 22}, {"Tracking", 22}, {"SKU", 18}, {"Product", 30}, {"Qty", 8},
		},
		Details: func(p upstream.PickOrder) [][]string {
			rows := make([][]string, 0, len(p.Details))
			for _, d := range p.Details {
				rows = append(rows, []string{p.Code, d.OrderID, dash(d.Tracking), d.SKU, d.ProductName, strconv.Itoa(d.Quantity)})
			}
			return rows
		},
		Totals: func(items []upstream.PickOrder) []Line {
			qty := 0
			for _, p := range items {
				for _, d := range p.Details {
					qty += d.Quantity
				}
			}
			return []Line{
				{"Total Pick Orders", strconv.Itoa(len(items))},
				{"Total Quantity", strconv.Itoa(qty)},
			}
		},
		Fetch: fetcher(src.ListPickOrders, "picker"),
	}
}

func BoxesCountReport(src Source) Definition[upstream.BoxCount] {
	return Definition[upstream.BoxCount]{
		ID:          BoxesCount,
		Name:        "BoxesCountReport",
		Title:       "Boxes Count Report",
		Noun:        "box usage",
		Sheet:       "Boxes Count",
		Entity:      "Box",
		EntityParam: "box_id",
		Columns: []Column{
			{"Box Code", 24}, {"Box Name", 40}, {"Count", 14},
		},
		Row: func(b upstream.BoxCount) []string {
			return []string{b.BoxCode, b.BoxName, strconv.Itoa(b.Count)}
		},
		Totals: func(items []upstream.BoxCount) []Line {
			total := 0
			for _, b := range items {
				total += b.Count
			}
			return []Line{
				{"Box Types", strconv.Itoa(len(items))},
				{"Total Boxes Used", strconv.Itoa(total)},
			}
		},
		Fetch: fetcher(src.ListBoxCounts, "box_id"),
	}
}

func UserChargeFeeReport(src Source) Definition[upstream.UserChargeFee] {
	return Definition[upstream.UserChargeFee]{
		ID:          UserChargeFees,
		Name:        "UserChargeFeeReport",
		Title:       "User Charge Fee Report",
		Noun:        "user charge fees",
		Sheet:       "Charge Fees",
		Entity:      "User",
		EntityParam: "user_id",
		Columns: []Column{
			{"Username", 22}, {"Full Name", 30}, {"Orders", 12}, {"Fee", 18}, {"Total", 20},
		},
		Row: func(u upstream.UserChargeFee) []string {
			return []string{u.Username, dash(u.FullName), strconv.Itoa(u.OrderCount), FormatCurrency(u.Fee), FormatCurrency(u.Total)}
		},
		Totals: func(items []upstream.UserChargeFee) []Line {
			var orders int
			var total int64
			for _, u := range items {
				orders += u.OrderCount
				total += u.Total
			}
			return []Line{
				{"Total Users", strconv.Itoa(len(items))},
				{"Total Orders", strconv.Itoa(orders)},
				{"Total Charge", FormatCurrency(total)},
			}
		},
		Fetch: fetcher(src.ListUserChargeFees, "user_id"),
	}
}

func OrderReport(src Source, loc *time.Location) Definition[upstream.Order] {
	return Definition[upstream.Order]{
		ID:          Orders,
		Name:        "OrderReport",
		Title:       "Order Report",
		Noun:        "orders",
		Sheet:       "Orders",
		Entity:      "Status",
		EntityParam: "status",
		Columns: []Column{
			{"Order ID", 24}, {"Tracking", 22}, {"Channel", 14}, {"Store", 18}, {"Status", 16}, {"Picked By", 18}, {"Created At", 22},
		},
		Row: func(o upstream.Order) []string {
			return []string{o.OrderID, dash(o.Tracking), o.Channel, o.Store, o.Status, dash(o.PickedBy), formatTime(o.CreatedAt, loc)}
		},
		DetailTitle: "Order Details",
		DetailSheet: "Order Details",
		DetailColumns: []Column{
			{"Order ID", 22}, {"Tracking", 20}, {"SKU", 16}, {"Product", 28}, {"Variant", 14}, {"Qty", 8}, {"Price", 14}, {"Subtotal", 16},
		},
		Details: func(o upstream.Order) [][]string {
			rows := make([][]string, 0, len(o.Details))
			for _, d := range o.Details {
				rows = append(rows, []string{
					o.OrderID, dash(o.Tracking), d.SKU, d.ProductName, dash(d.Variant),
					strconv.Itoa(d.Quantity), FormatCurrency(d.Price), FormatCurrency(d.Price * int64(d.Quantity)),
				})
			}
			return rows
		},
		Totals: func(items []upstream.Order) []Line {
			var qty int
			var value int64
			for _, o := range items {
				for _, d := range o.Details {
					qty += d.Quantity
					value += d.Price * int64(d.Quantity)
				}
			}
			return []Line{
				{"Total Orders", strconv.Itoa(len(items))},
				{"Total Quantity", strconv.Itoa(qty)},
				{"Total Value", FormatCurrency(value)},
			}
		},
		Fetch: fetcher(src.ListOrders, "status"),
	}
}

func ReturnReport(src Source, loc *time.Location) Definition[upstream.Return] {
	return Definition[upstream.Return]{
		ID:          Returns,
		Name:        "ReturnReport",
		Title:       "Return Report",
		Noun:        "returns",
		Sheet:       "Returns",
		Entity:      "Return Type",
		EntityParam: "return_type",
		Columns: []Column{
			{"Order ID", 22}, {"Old Tracking", 20}, {"New Tracking", 20}, {"Channel", 14}, {"Store", 16}, {"Type", 14}, {"Reason", 24}, {"Created At", 20},
		},
		Row: func(r upstream.Return) []string {
			return []string{
				r.OrderID, dash(r.OldTracking), dash(r.NewTracking), r.Channel, r.Store,
				dash(r.ReturnType), dash(r.ReturnReason), formatTime(r.CreatedAt, loc),
			}
		},
		DetailTitle: "Return Details",
		DetailSheet: "Return Details",
		DetailColumns: []Column{
			{"Order ID", 22}, {"New Tracking", 22}, {"SKU", 18}, {"Product", 32}, {"Qty", 8},
		},
		Details: func(r upstream.Return) [][]string {
			rows := make([][]string, 0, len(r.Details))
			for _, d := range r.Details {
				rows = append(rows, []string{r.OrderID, dash(r.NewTracking), d.SKU, d.ProductName, strconv.Itoa(d.Quantity)})
			}
			return rows
		},
		Totals: func(items []upstream.Return) []Line {
			qty := 0
			for _, r := range items {
				for _, d := range r.Details {
					qty += d.Quantity
				}
			}
			return []Line{
				{"Total Returns", strconv.Itoa(len(items))},
				{"Total Quantity", strconv.Itoa(qty)},
			}
		},
		Fetch: fetcher(src.ListReturns, "return_type"),
	}
}
