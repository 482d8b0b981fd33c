package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekamauln/livo-next/internal/upstream"
)

// fakeSource serves fixed slices and records the queries it receives.
type fakeSource struct {
	pickOrders []upstream.PickOrder
	boxCounts  []upstream.BoxCount
	fees       []upstream.UserChargeFee
	orders     []upstream.Order
	returns    []upstream.Return
	queries    []upstream.ListQuery
}

func slicePage[T any](items []T, q upstream.ListQuery) *upstream.Page[T] {
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return &upstream.Page[T]{Records: items[start:end], Page: q.Page, Limit: q.Limit, Total: len(items)}
}

func (f *fakeSource) ListPickOrders(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.PickOrder], error) {
	f.queries = append(f.queries, q)
	return slicePage(f.pickOrders, q), nil
}

func (f *fakeSource) ListBoxCounts(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.BoxCount], error) {
	f.queries = append(f.queries, q)
	return slicePage(f.boxCounts, q), nil
}

func (f *fakeSource) ListUserChargeFees(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.UserChargeFee], error) {
	f.queries = append(f.queries, q)
	return slicePage(f.fees, q), nil
}

func (f *fakeSource) ListOrders(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Order], error) {
	f.queries = append(f.queries, q)
	return slicePage(f.orders, q), nil
}

func (f *fakeSource) ListReturns(_ context.Context, q upstream.ListQuery) (*upstream.Page[upstream.Return], error) {
	f.queries = append(f.queries, q)
	return slicePage(f.returns, q), nil
}

var testNow = time.Date(2026, 5, 20, 14, 30, 0, 0, time.UTC)

func sampleOrders(n int) []upstream.Order {
	out := make([]upstream.Order, n)
	for i := range out {
		out[i] = upstream.Order{
			ID:      uint(i + 1),
			OrderID: fmt.Sprintf("INV-%03d", i+1),
			Status:  upstream.OrderStatusPacked,
			Channel: "shopee",
			Store:   "main",
		}
	}
	return out
}

func TestCatalogKeys(t *testing.T) {
	reports := Catalog(&fakeSource{}, nil)
	keys := make([]string, 0, len(reports))
	for _, r := range reports {
		keys = append(keys, r.Key())
	}
	assert.ElementsMatch(t, []string{PickOrders, BoxesCount, UserChargeFees, Orders, Returns}, keys)
}

func TestOrderReportCollectsAllPages(t *testing.T) {
	src := &fakeSource{orders: sampleOrders(205)}
	src.orders[0].Details = []upstream.OrderDetail{
		{SKU: "SKU-1", ProductName: "Tea", Quantity: 2, Price: 15000},
		{SKU: "SKU-2", ProductName: "Mug", Quantity: 1, Price: 1234567},
	}

	rep := OrderReport(src, time.UTC)
	filter := Filter{Entity: upstream.OrderStatusPacked}
	doc, err := rep.Collect(context.Background(), filter, 100, 0, testNow)
	require.NoError(t, err)

	assert.Equal(t, 205, doc.RecordCount)
	require.Len(t, doc.Main.Rows, 205)
	assert.Equal(t, "1", doc.Main.Rows[0][0])
	assert.Equal(t, "205", doc.Main.Rows[204][0])
	assert.Equal(t, "No", doc.Main.Columns[0].Header)

	require.Len(t, src.queries, 3)
	for _, q := range src.queries {
		assert.Equal(t, upstream.OrderStatusPacked, q.Extra["status"])
	}

	require.NotNil(t, doc.Detail)
	require.Len(t, doc.Detail.Rows, 2)
	// parent order id, then price and subtotal at the end
	assert.Equal(t, src.orders[0].OrderID, doc.Detail.Rows[0][1])
	last := doc.Detail.Rows[1]
	assert.Equal(t, "1.234.567", last[len(last)-1])
	assert.Equal(t, Line{"Total Value", "1.264.567"}, doc.Totals[2])
}

func TestBoxesCountReportHasNoDetail(t *testing.T) {
	src := &fakeSource{boxCounts: []upstream.BoxCount{
		{BoxID: 1, BoxCode: "A1", BoxName: "Small", Count: 4},
		{BoxID: 2, BoxCode: "A2", BoxName: "Large", Count: 6},
	}}
	doc, err := BoxesCountReport(src).Collect(context.Background(), Filter{}, 100, 0, testNow)
	require.NoError(t, err)
	assert.Nil(t, doc.Detail)
	assert.Equal(t, []string{"2", "A2", "Large", "6"}, doc.Main.Rows[1])
	assert.Equal(t, Line{"Total Boxes Used", "10"}, doc.Totals[1])
}

func TestPickOrderDetailWithoutChildren(t *testing.T) {
	src := &fakeSource{pickOrders: []upstream.PickOrder{{Code: "PO-1", Picker: "budi"}}}
	doc, err := PickOrderReport(src, time.UTC).Collect(context.Background(), Filter{}, 100, 0, testNow)
	require.NoError(t, err)
	assert.Nil(t, doc.Detail, "detail table only when a record has child items")
}

func TestUserChargeFeeCurrency(t *testing.T) {
	src := &fakeSource{fees: []upstream.UserChargeFee{
		{UserID: 1, Username: "budi", OrderCount: 10, Fee: 2500, Total: 25000},
		{UserID: 2, Username: "sari", OrderCount: 3, Fee: 2500, Total: 7500},
	}}
	doc, err := UserChargeFeeReport(src).Collect(context.Background(), Filter{}, 100, 0, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "budi", "-", "10", "2.500", "25.000"}, doc.Main.Rows[0])
	assert.Equal(t, Line{"Total Charge", "32.500"}, doc.Totals[2])
}

func TestReturnReportDetailRows(t *testing.T) {
	src := &fakeSource{returns: []upstream.Return{
		{OrderID: "INV-9", NewTracking: "JP1", ReturnType: "damaged", Details: []upstream.ReturnDetail{
			{SKU: "S1", ProductName: "Cup", Quantity: 2},
			{SKU: "S2", ProductName: "Plate", Quantity: 1},
		}},
	}}
	doc, err := ReturnReport(src, time.UTC).Collect(context.Background(), Filter{}, 100, 0, testNow)
	require.NoError(t, err)
	require.NotNil(t, doc.Detail)
	assert.Equal(t, []string{"2", "INV-9", "JP1", "S2", "Plate", "1"}, doc.Detail.Rows[1])
	assert.Equal(t, Line{"Total Quantity", "3"}, doc.Totals[1])
}

func TestDocumentMeta(t *testing.T) {
	doc := &Document{RecordCount: 3, GeneratedAt: testNow, EntityLabel: "Status"}
	meta := doc.PDFMeta()
	require.Len(t, meta, 3, "no period, entity or search lines when unset")
	assert.Equal(t, "20-05-2026 14:30:00", meta[1].Value)
	assert.Equal(t, "Checker", meta[2].Key)

	info := doc.InfoRows()
	assert.Equal(t, Line{"Period", "All"}, info[0])
	assert.Equal(t, Line{"Status", "All"}, info[1])
}
