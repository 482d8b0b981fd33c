package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekamauln/livo-next/internal/form"
	"github.com/ekamauln/livo-next/internal/upstream"
)

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, "red", BadgeColor("superadmin"))
	assert.Equal(t, "blue", BadgeColor(" Picker "))
	assert.Equal(t, DefaultBadgeColor, BadgeColor("astronaut"))
	assert.Equal(t, DefaultBadgeColor, BadgeColor(""))
	assert.Contains(t, Roles(), "qc")
}

func validForm() UserForm {
	return UserForm{Username: "budi01", FullName: "Budi Santoso", Email: "budi@example.com"}
}

func TestValidateEdit(t *testing.T) {
	v := form.New()
	require.NoError(t, ValidateEdit(v, validForm()))

	f := validForm()
	f.Email = "x"
	f.Password = "short"
	fe, ok := form.AsErrors(ValidateEdit(v, f))
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "email")
	assert.Contains(t, fe.Fields, "password")

	active := true
	f = validForm()
	f.Admin = &AdminFields{Roles: []string{"picker"}, IsActive: &active}
	fe, ok = form.AsErrors(ValidateEdit(v, f))
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "admin")
}

func TestValidateAdminEdit(t *testing.T) {
	v := form.New()

	fe, ok := form.AsErrors(ValidateAdminEdit(v, validForm()))
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "admin")

	active := false
	f := validForm()
	f.Admin = &AdminFields{Roles: []string{"picker", "qc"}, IsActive: &active}
	require.NoError(t, ValidateAdminEdit(v, f))

	// base rules still apply to the admin form
	f.Username = ""
	f.Admin.Roles = []string{"picker", "Picker"}
	fe, ok = form.AsErrors(ValidateAdminEdit(v, f))
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "username")
	assert.Contains(t, fe.Fields, "admin.roles[1]")

	f = validForm()
	f.Admin = &AdminFields{}
	fe, ok = form.AsErrors(ValidateAdminEdit(v, f))
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "admin.roles")
	assert.Contains(t, fe.Fields, "admin.is_active")
}

func TestPayload(t *testing.T) {
	active := true
	f := validForm()
	f.Admin = &AdminFields{Roles: []string{" QC "}, IsActive: &active}
	body := f.Payload()
	assert.Equal(t, []string{"qc"}, body["roles"])
	assert.Equal(t, true, body["is_active"])
	assert.NotContains(t, body, "password")
}

func TestValidateUserDetails(t *testing.T) {
	details := []upstream.UserChargeFeeDetailInput{
		{UserID: 1, Fee: 2500},
		{UserID: 2, Fee: 2500},
		{UserID: 1, Fee: 3000},
	}
	fe, ok := form.AsErrors(ValidateUserDetails(details))
	require.True(t, ok)
	assert.Equal(t, DuplicateDetailBanner, fe.Banner)
	assert.Equal(t, map[string]string{"details[2].user_id": "User already added in row 1"}, fe.Fields)

	assert.NoError(t, ValidateUserDetails(details[:2]))
}

func TestValidateChargeFees(t *testing.T) {
	v := form.New()
	in := upstream.UserChargeFeeInput{
		Date:    "2026-10-17",
		Details: []upstream.UserChargeFeeDetailInput{{UserID: 1, Fee: 100}, {UserID: 1, Fee: 200}},
	}
	fe, ok := form.AsErrors(ValidateChargeFees(v, in))
	require.True(t, ok)
	assert.Equal(t, DuplicateDetailBanner, fe.Banner)

	in.Details = in.Details[:1]
	assert.NoError(t, ValidateChargeFees(v, in))

	in.Date = ""
	fe, ok = form.AsErrors(ValidateChargeFees(v, in))
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "date")
}
