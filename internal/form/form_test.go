package form

import (
	"errors"
	"testing"
)

type detail struct {
	UserID uint  `json:"user_id" validate:"required"`
	Fee    int64 `json:"fee" validate:"min=0"`
}

type payload struct {
	Name    string   `json:"full_name" validate:"notblank,max=10"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Role    string   `json:"role" validate:"omitempty,oneof=admin picker"`
	Date    string   `json:"date" validate:"required,datetime=2006-01-02"`
	Details []detail `json:"details" validate:"required,min=1,dive"`
}

func TestStructFieldMessages(t *testing.T) {
	v := New()
	err := v.Struct(payload{
		Name:    "   ",
		Email:   "nope",
		Role:    "boss",
		Date:    "17-10-2026",
		Details: []detail{{UserID: 1}, {Fee: -1}},
	})
	fe, ok := AsErrors(err)
	if !ok {
		t.Fatalf("err = %v, want *Errors", err)
	}

	want := map[string]string{
		"full_name":          "Full name is required",
		"email":              "Email must be a valid email address",
		"role":               "Role must be one of: admin, picker",
		"date":               "Date must be a date formatted as yyyy-MM-dd",
		"details[1].user_id": "User id is required",
		"details[1].fee":     "Fee must be at least 0",
	}
	for field, msg := range want {
		if got := fe.Fields[field]; got != msg {
			t.Errorf("Fields[%q] = %q, want %q", field, got, msg)
		}
	}
	if len(fe.Fields) != len(want) {
		t.Errorf("Fields = %v", fe.Fields)
	}
}

func TestStructValid(t *testing.T) {
	err := New().Struct(payload{Name: "Budi", Date: "2026-10-17", Details: []detail{{UserID: 1, Fee: 2500}}})
	if err != nil {
		t.Fatalf("Struct() = %v", err)
	}
}

func TestErrors(t *testing.T) {
	var e Errors
	if e.Err() != nil {
		t.Fatal("empty Errors must convert to nil")
	}
	e.Add("email", "first")
	e.Add("email", "second")
	if e.Fields["email"] != "first" {
		t.Fatalf("Add overwrote: %q", e.Fields["email"])
	}
	if e.Error() != "email: first" {
		t.Fatalf("Error() = %q", e.Error())
	}

	e.Merge(&Errors{Fields: map[string]string{"x": "y"}, Banner: "duplicate user detail"})
	if e.Error() != "duplicate user detail" || e.Fields["x"] != "y" {
		t.Fatalf("after Merge: %+v", e)
	}

	wrapped := errors.Join(errors.New("ctx"), e.Err())
	if _, ok := AsErrors(wrapped); !ok {
		t.Fatal("AsErrors through wrapping")
	}
}
