package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/upstream"
)

// respondPage proxies one page of an upstream list. extra names the query
// parameters passed through as filters.
func respondPage[T any](c *gin.Context, fetch func(context.Context, upstream.ListQuery) (*upstream.Page[T], error), extra ...string) {
	q, err := listQuery(c, extra...)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	page, err := fetch(RequestContext(c), q)
	if err != nil {
		UpstreamError(c, err)
		return
	}
	items := page.Records
	if items == nil {
		items = []T{}
	}
	Success(c, ListResponse{
		Items:      items,
		Pagination: NewPagination(q.Page, q.Limit, page.Total),
	})
}

// ListHandler serves the read-only list pages backed by the upstream API.
type ListHandler struct {
	api *upstream.Client
}

func NewListHandler(api *upstream.Client) *ListHandler {
	return &ListHandler{api: api}
}

// PickOrders GET /api/v1/pick-orders
func (h *ListHandler) PickOrders(c *gin.Context) {
	respondPage(c, h.api.ListPickOrders, "picker", "status")
}

// Boxes GET /api/v1/boxes
func (h *ListHandler) Boxes(c *gin.Context) {
	respondPage(c, h.api.ListBoxes)
}

// BoxCounts GET /api/v1/boxes/count
func (h *ListHandler) BoxCounts(c *gin.Context) {
	respondPage(c, h.api.ListBoxCounts, "box_id")
}

// UserChargeFees GET /api/v1/user-charge-fees
func (h *ListHandler) UserChargeFees(c *gin.Context) {
	respondPage(c, h.api.ListUserChargeFees, "user_id")
}

// Returns GET /api/v1/returns
func (h *ListHandler) Returns(c *gin.Context) {
	respondPage(c, h.api.ListReturns, "return_type", "channel", "store")
}

// Complaints GET /api/v1/complaints
func (h *ListHandler) Complaints(c *gin.Context) {
	respondPage(c, h.api.ListComplaints, "status", "channel", "store")
}

// Products GET /api/v1/products
func (h *ListHandler) Products(c *gin.Context) {
	respondPage(c, h.api.ListProducts)
}

// Users GET /api/v1/users
func (h *ListHandler) Users(c *gin.Context) {
	respondPage(c, h.api.ListUsers, "role", "is_active")
}

// User GET /api/v1/users/:id
func (h *ListHandler) User(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.api.GetUser(RequestContext(c), id)
	if upstream.IsNotFound(err) {
		NotFound(c, "User not found")
		return
	}
	if err != nil {
		UpstreamError(c, err)
		return
	}
	Success(c, user)
}

// Expeditions GET /api/v1/expeditions
func (h *ListHandler) Expeditions(c *gin.Context) {
	respondPage(c, h.api.ListExpeditions)
}
