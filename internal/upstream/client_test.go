package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	client := NewClient(srv.URL, 5*time.Second, nil)
	return srv, client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestListOrdersQueryAndDecode(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("path = %q, want /orders", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "100" {
			t.Errorf("page/limit = %s/%s", q.Get("page"), q.Get("limit"))
		}
		if q.Get("start_date") != "2026-01-05" || q.Get("end_date") != "2026-01-31" {
			t.Errorf("dates = %s..%s", q.Get("start_date"), q.Get("end_date"))
		}
		if q.Get("search") != "INV" || q.Get("status") != "packed" {
			t.Errorf("search/status = %s/%s", q.Get("search"), q.Get("status"))
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, 200, map[string]any{
			"success": true,
			"message": "ok",
			"data": map[string]any{
				"orders":     []map[string]any{{"id": 7, "order_id": "INV-7", "status": "packed"}},
				"pagination": map[string]any{"page": 2, "limit": 100, "total": 101},
			},
		})
	})
	defer srv.Close()

	from := time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	ctx := WithToken(context.Background(), "tok-1")
	page, err := client.ListOrders(ctx, ListQuery{
		Page: 2, Limit: 100, Search: "INV", StartDate: &from, EndDate: &to,
		Extra: map[string]string{"status": "packed"},
	})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if page.Total != 101 || len(page.Records) != 1 || page.Records[0].OrderID != "INV-7" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestListRejectsNonCanonicalShape(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		// list nested under a different key
		writeJSON(w, 200, map[string]any{
			"success": true,
			"data": map[string]any{
				"items":      []any{},
				"pagination": map[string]any{"page": 1, "limit": 10, "total": 0},
			},
		})
	})
	defer srv.Close()

	_, err := client.ListReturns(context.Background(), ListQuery{Page: 1, Limit: 10})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestListRequiresPagination(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{
			"success": true,
			"data":    map[string]any{"returns": []any{}},
		})
	})
	defer srv.Close()

	_, err := client.ListReturns(context.Background(), ListQuery{Page: 1})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestSuccessFalseIsError(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"success": false, "message": "tracking already used"})
	})
	defer srv.Close()

	_, err := client.CreateQCOnline(context.Background(), &QCOnlineInput{Tracking: "JP1"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.UserMessage() != "tracking already used" {
		t.Fatalf("unexpected message %q", se.UserMessage())
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{401, `{"success":false,"message":"token expired"}`, "Your session has expired, please log in again"},
		{500, `{"success":false,"message":"db down"}`, "Server error, please try again later"},
		{503, `gateway`, "Server error, please try again later"},
		{422, `{"success":false,"message":"sku is required"}`, "sku is required"},
		{404, `not json`, "Not Found"},
	}
	for _, tt := range tests {
		srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		})
		_, err := client.GetOrder(context.Background(), 1)
		srv.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if got := UserMessage(err); got != tt.want {
			t.Errorf("status %d: message = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestUserMessageHidesOtherErrors(t *testing.T) {
	err := errors.New("dial tcp 10.0.4.2:5432: connect: connection refused")
	if got := UserMessage(err); got != GenericMessage {
		t.Errorf("message = %q, want %q", got, GenericMessage)
	}
	if got := UserMessage(ErrMalformedResponse); got != "Unexpected response from server" {
		t.Errorf("malformed message = %q", got)
	}
}

func TestNetworkErrorIsStatusZero(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	err := client.DeleteProduct(context.Background(), 3)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != 0 {
		t.Fatalf("expected status 0 error, got %v", err)
	}
	if !strings.Contains(se.UserMessage(), "Network error") {
		t.Fatalf("unexpected message %q", se.UserMessage())
	}
}

func TestMissingDataIsMalformed(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"success": true, "message": "ok"})
	})
	defer srv.Close()

	_, err := client.GetUser(context.Background(), 9)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestDeleteWithoutData(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/complaints/4" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, 200, map[string]any{"success": true, "message": "deleted"})
	})
	defer srv.Close()

	if err := client.DeleteComplaint(context.Background(), 4); err != nil {
		t.Fatalf("DeleteComplaint: %v", err)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2026-03-09" {
		t.Fatalf("FormatDate = %q", got)
	}
	p, err := ParseDate("2026-03-09", nil)
	if err != nil || !p.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseDate = %v, %v", p, err)
	}
}
