package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/orders"
	"github.com/ekamauln/livo-next/internal/upstream"
)

type OrderHandler struct {
	api *upstream.Client
}

func NewOrderHandler(api *upstream.Client) *OrderHandler {
	return &OrderHandler{api: api}
}

// listQuery reads the common list parameters. extra names pass-through filters.
func listQuery(c *gin.Context, extra ...string) (upstream.ListQuery, error) {
	page, pageSize := GetPagination(c)
	q := upstream.ListQuery{
		Page:   page,
		Limit:  pageSize,
		Search: strings.TrimSpace(c.Query("search")),
	}
	if s := c.Query("start_date"); s != "" {
		t, err := upstream.ParseDate(s, nil)
		if err != nil {
			return q, errors.New("start_date must be formatted as yyyy-MM-dd")
		}
		q.StartDate = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := upstream.ParseDate(s, nil)
		if err != nil {
			return q, errors.New("end_date must be formatted as yyyy-MM-dd")
		}
		q.EndDate = &t
	}
	for _, key := range extra {
		if v := c.Query(key); v != "" {
			if q.Extra == nil {
				q.Extra = make(map[string]string)
			}
			q.Extra[key] = v
		}
	}
	return q, nil
}

// List GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	respondPage(c, h.api.ListOrders, "status", "channel", "store")
}

// Get GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.api.GetOrder(RequestContext(c), id)
	if err != nil {
		UpstreamError(c, err)
		return
	}
	Success(c, order)
}

type updateDetailsRequest struct {
	Details []upstream.OrderDetailInput `json:"order_details" binding:"required,min=1,dive"`
}

// UpdateDetails PUT /api/v1/orders/:id/details
func (h *OrderHandler) UpdateDetails(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid order details: "+err.Error())
		return
	}

	ctx := RequestContext(c)
	order, err := h.api.GetOrder(ctx, id)
	if err != nil {
		UpstreamError(c, err)
		return
	}
	if err := orders.CanEditDetails(order); err != nil {
		Conflict(c, 40902, err.Error())
		return
	}

	updated, err := h.api.UpdateOrderDetails(ctx, id, orders.NormalizeDetails(req.Details))
	if err != nil {
		UpstreamError(c, err)
		return
	}
	Success(c, updated)
}
