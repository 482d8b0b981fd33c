// Package form validates request payloads and reports problems per field,
// plus an optional banner for errors that belong to the whole form.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors is a validation failure shown inline per field and, optionally, as a
// banner above the form.
type Errors struct {
	Fields map[string]string `json:"fields,omitempty"`
	Banner string            `json:"banner,omitempty"`
}

func (e *Errors) Error() string {
	if e.Banner != "" {
		return e.Banner
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Add records msg for field, keeping the first message per field.
func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *Errors) Empty() bool {
	return e == nil || (len(e.Fields) == 0 && e.Banner == "")
}

// Merge copies other's fields and banner into e. Existing entries win.
func (e *Errors) Merge(other *Errors) {
	if other.Empty() {
		return
	}
	for k, v := range other.Fields {
		e.Add(k, v)
	}
	if e.Banner == "" {
		e.Banner = other.Banner
	}
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// AsErrors unwraps err into *Errors.
func AsErrors(err error) (*Errors, bool) {
	var fe *Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Validator wraps a validator.Validate configured to name fields by their json tag.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validateNotBlank)
	return &Validator{v: v}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct validates s. The result is nil or a *Errors.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath drops the root struct name: "UserForm.email" -> "email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func label(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as yyyy-MM-dd", name)
	case "unique":
		return name + " must not contain duplicates"
	}
	return name + " is invalid"
}
