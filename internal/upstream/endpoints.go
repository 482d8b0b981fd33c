package upstream

import (
	"context"
	"fmt"
)

// ListOrders GET /orders
func (c *Client) ListOrders(ctx context.Context, q ListQuery) (*Page[Order], error) {
	return listPage[Order](ctx, c, "/orders", "orders", q)
}

// GetOrder GET /orders/:id
func (c *Client) GetOrder(ctx context.Context, id uint) (*Order, error) {
	var order Order
	if err := c.get(ctx, fmt.Sprintf("/orders/%d", id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderDetails PUT /orders/:id/details
func (c *Client) UpdateOrderDetails(ctx context.Context, id uint, details []OrderDetailInput) (*Order, error) {
	var order Order
	body := map[string]any{"order_details": details}
	if err := c.put(ctx, fmt.Sprintf("/orders/%d/details", id), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListPickOrders GET /pick-orders
func (c *Client) ListPickOrders(ctx context.Context, q ListQuery) (*Page[PickOrder], error) {
	return listPage[PickOrder](ctx, c, "/pick-orders", "pick_orders", q)
}

// ListBoxes GET /boxes
func (c *Client) ListBoxes(ctx context.Context, q ListQuery) (*Page[Box], error) {
	return listPage[Box](ctx, c, "/boxes", "boxes", q)
}

// ListBoxCounts GET /boxes/count
func (c *Client) ListBoxCounts(ctx context.Context, q ListQuery) (*Page[BoxCount], error) {
	return listPage[BoxCount](ctx, c, "/boxes/count", "boxes_count", q)
}

// ListUserChargeFees GET /user-charge-fees
func (c *Client) ListUserChargeFees(ctx context.Context, q ListQuery) (*Page[UserChargeFee], error) {
	return listPage[UserChargeFee](ctx, c, "/user-charge-fees", "user_charge_fees", q)
}

// CreateUserChargeFees POST /user-charge-fees
func (c *Client) CreateUserChargeFees(ctx context.Context, in *UserChargeFeeInput) error {
	return c.post(ctx, "/user-charge-fees", in, nil)
}

// ListReturns GET /returns
func (c *Client) ListReturns(ctx context.Context, q ListQuery) (*Page[Return], error) {
	return listPage[Return](ctx, c, "/returns", "returns", q)
}

// DeleteReturn DELETE /returns/:id
func (c *Client) DeleteReturn(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/returns/%d", id))
}

// ListComplaints GET /complaints
func (c *Client) ListComplaints(ctx context.Context, q ListQuery) (*Page[Complaint], error) {
	return listPage[Complaint](ctx, c, "/complaints", "complaints", q)
}

// DeleteComplaint DELETE /complaints/:id
func (c *Client) DeleteComplaint(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/complaints/%d", id))
}

// ListProducts GET /products
func (c *Client) ListProducts(ctx context.Context, q ListQuery) (*Page[Product], error) {
	return listPage[Product](ctx, c, "/products", "products", q)
}

// DeleteProduct DELETE /products/:id
func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/products/%d", id))
}

// ListUsers GET /users
func (c *Client) ListUsers(ctx context.Context, q ListQuery) (*Page[User], error) {
	return listPage[User](ctx, c, "/users", "users", q)
}

// GetUser GET /users/:id
func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser PUT /users/:id
func (c *Client) UpdateUser(ctx context.Context, id uint, body any) (*User, error) {
	var user User
	if err := c.put(ctx, fmt.Sprintf("/users/%d", id), body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser DELETE /users/:id
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d", id))
}

// ListExpeditions GET /expeditions
func (c *Client) ListExpeditions(ctx context.Context, q ListQuery) (*Page[Expedition], error) {
	return listPage[Expedition](ctx, c, "/expeditions", "expeditions", q)
}

// CreateQCOnline POST /qc-onlines
func (c *Client) CreateQCOnline(ctx context.Context, in *QCOnlineInput) (*QCOnline, error) {
	var qc QCOnline
	if err := c.post(ctx, "/qc-onlines", in, &qc); err != nil {
		return nil, err
	}
	return &qc, nil
}
