// Package users holds user presentation lookups and the edit form rules.
package users

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ekamauln/livo-next/internal/form"
	"github.com/ekamauln/livo-next/internal/upstream"
)

// DefaultBadgeColor is used for roles without a dedicated color.
const DefaultBadgeColor = "gray"

var badgeColors = map[string]string{
	"superadmin":  "red",
	"admin":       "orange",
	"coordinator": "purple",
	"finance":     "green",
	"picker":      "blue",
	"packer":      "cyan",
	"qc":          "yellow",
	"outbound":    "teal",
	"guest":       "slate",
}

// BadgeColor maps a role to its badge color. Matching ignores case.
func BadgeColor(role string) string {
	if c, ok := badgeColors[strings.ToLower(strings.TrimSpace(role))]; ok {
		return c
	}
	return DefaultBadgeColor
}

// Roles lists the roles that have a badge color, sorted.
func Roles() []string {
	out := make([]string, 0, len(badgeColors))
	for r := range badgeColors {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// UserForm is the user edit schema. Admin carries the fields only admins may
// change; it is nil for a plain profile edit.
type UserForm struct {
	Username string      `json:"username" validate:"required,min=3,max=50,alphanum"`
	FullName string      `json:"full_name" validate:"notblank,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password,omitempty" validate:"omitempty,min=8"`
	Admin    *AdminFields `json:"admin,omitempty"`
}

type AdminFields struct {
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
	IsActive *bool    `json:"is_active" validate:"required"`
}

// Payload is the upstream update body for the form.
func (f UserForm) Payload() map[string]any {
	body := map[string]any{
		"username":  strings.TrimSpace(f.Username),
		"full_name": strings.TrimSpace(f.FullName),
		"email":     strings.TrimSpace(f.Email),
	}
	if f.Password != "" {
		body["password"] = f.Password
	}
	if f.Admin != nil {
		roles := make([]string, 0, len(f.Admin.Roles))
		for _, r := range f.Admin.Roles {
			roles = append(roles, strings.ToLower(strings.TrimSpace(r)))
		}
		body["roles"] = roles
		if f.Admin.IsActive != nil {
			body["is_active"] = *f.Admin.IsActive
		}
	}
	return body
}

// ValidateEdit checks a profile edit. Admin fields are not accepted here.
func ValidateEdit(v *form.Validator, f UserForm) error {
	errs := &form.Errors{}
	if err := v.Struct(f); err != nil {
		fe, ok := form.AsErrors(err)
		if !ok {
			return err
		}
		errs.Merge(fe)
	}
	if f.Admin != nil {
		errs.Add("admin", "Roles and status can only be changed by an administrator")
	}
	return errs.Err()
}

// ValidateAdminEdit checks an admin edit: the base rules plus the admin fields.
func ValidateAdminEdit(v *form.Validator, f UserForm) error {
	errs := &form.Errors{}
	if f.Admin == nil {
		errs.Add("admin", "Admin fields are required")
	}
	if err := v.Struct(f); err != nil {
		fe, ok := form.AsErrors(err)
		if !ok {
			return err
		}
		errs.Merge(fe)
	}
	if f.Admin != nil {
		seen := make(map[string]bool, len(f.Admin.Roles))
		for i, r := range f.Admin.Roles {
			key := strings.ToLower(strings.TrimSpace(r))
			if seen[key] {
				errs.Add(fmt.Sprintf("admin.roles[%d]", i), "Role is listed twice")
			}
			seen[key] = true
		}
	}
	return errs.Err()
}

// DuplicateDetailBanner is shown when one user appears twice in a detail list.
const DuplicateDetailBanner = "duplicate user detail"

// ValidateUserDetails flags every repeated user after its first occurrence.
func ValidateUserDetails(details []upstream.UserChargeFeeDetailInput) error {
	errs := &form.Errors{}
	seen := make(map[uint]int, len(details))
	for i, d := range details {
		if d.UserID == 0 {
			continue
		}
		if first, ok := seen[d.UserID]; ok {
			errs.Add(fmt.Sprintf("details[%d].user_id", i), fmt.Sprintf("User already added in row %d", first+1))
			errs.Banner = DuplicateDetailBanner
			continue
		}
		seen[d.UserID] = i
	}
	return errs.Err()
}

// ValidateChargeFees checks a user charge fee create payload.
func ValidateChargeFees(v *form.Validator, in upstream.UserChargeFeeInput) error {
	errs := &form.Errors{}
	if err := v.Struct(in); err != nil {
		fe, ok := form.AsErrors(err)
		if !ok {
			return err
		}
		errs.Merge(fe)
	}
	if err := ValidateUserDetails(in.Details); err != nil {
		if fe, ok := form.AsErrors(err); ok {
			errs.Merge(fe)
		}
	}
	return errs.Err()
}
