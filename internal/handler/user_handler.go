package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/form"
	"github.com/ekamauln/livo-next/internal/middleware"
	"github.com/ekamauln/livo-next/internal/upstream"
	"github.com/ekamauln/livo-next/internal/users"
)

type UserHandler struct {
	api       *upstream.Client
	validator *form.Validator
}

func NewUserHandler(api *upstream.Client, v *form.Validator) *UserHandler {
	return &UserHandler{api: api, validator: v}
}

// Update PUT /api/v1/users/:id
// Users may edit their own profile; admins may edit anyone's.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if c.Param("id") != GetUserID(c) && !middleware.HasRole(c, "admin") {
		Forbidden(c, "You can only edit your own profile")
		return
	}

	var f users.UserForm
	if err := c.ShouldBindJSON(&f); err != nil {
		BadRequest(c, "Invalid user payload: "+err.Error())
		return
	}
	if err := users.ValidateEdit(h.validator, f); err != nil {
		RespondError(c, err)
		return
	}
	h.save(c, id, f)
}

// AdminUpdate PUT /api/v1/users/:id/admin
func (h *UserHandler) AdminUpdate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var f users.UserForm
	if err := c.ShouldBindJSON(&f); err != nil {
		BadRequest(c, "Invalid user payload: "+err.Error())
		return
	}
	if err := users.ValidateAdminEdit(h.validator, f); err != nil {
		RespondError(c, err)
		return
	}
	h.save(c, id, f)
}

func (h *UserHandler) save(c *gin.Context, id uint, f users.UserForm) {
	user, err := h.api.UpdateUser(RequestContext(c), id, f.Payload())
	if err != nil {
		UpstreamError(c, err)
		return
	}
	Success(c, user)
}

// Badge GET /api/v1/users/badges/:role
func (h *UserHandler) Badge(c *gin.Context) {
	role := c.Param("role")
	Success(c, gin.H{"role": role, "color": users.BadgeColor(role)})
}

// Badges GET /api/v1/users/badges
func (h *UserHandler) Badges(c *gin.Context) {
	items := make([]gin.H, 0)
	for _, r := range users.Roles() {
		items = append(items, gin.H{"role": r, "color": users.BadgeColor(r)})
	}
	Success(c, gin.H{"items": items, "default": users.DefaultBadgeColor})
}

// CreateChargeFees POST /api/v1/user-charge-fees
func (h *UserHandler) CreateChargeFees(c *gin.Context) {
	var in upstream.UserChargeFeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid charge fee payload: "+err.Error())
		return
	}
	if err := users.ValidateChargeFees(h.validator, in); err != nil {
		RespondError(c, err)
		return
	}
	if err := h.api.CreateUserChargeFees(RequestContext(c), &in); err != nil {
		UpstreamError(c, err)
		return
	}
	Created(c, gin.H{"date": in.Date, "count": len(in.Details)})
}
