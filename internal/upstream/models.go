package upstream

import "time"

// Order status values the dashboard acts on.
const (
	OrderStatusReadyToPick = "ready to pick"
	OrderStatusPicking     = "picking"
	OrderStatusPacked      = "packed"
	OrderStatusShipped     = "shipped"
	OrderStatusCancelled   = "cancelled"
)

type Order struct {
	ID        uint          `json:"id"`
	OrderID   string        `json:"order_id"`
	Status    string        `json:"status"`
	Channel   string        `json:"channel"`
	Store     string        `json:"store"`
	Buyer     string        `json:"buyer"`
	Tracking  string        `json:"tracking"`
	Courier   string        `json:"courier"`
	PickedBy  string        `json:"picked_by"`
	CreatedAt time.Time     `json:"created_at"`
	Details   []OrderDetail `json:"order_details"`
}

type OrderDetail struct {
	ID          uint   `json:"id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Variant     string `json:"variant"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// OrderDetailInput one line of an order details update
type OrderDetailInput struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Price    int64  `json:"price" binding:"min=0"`
}

type PickOrder struct {
	ID        uint              `json:"id"`
	Code      string            `json:"code"`
	Picker    string            `json:"picker"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	Details   []PickOrderDetail `json:"pick_order_details"`
}

type PickOrderDetail struct {
	OrderID     string `json:"order_id"`
	Tracking    string `json:"tracking"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type Box struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// BoxCount usage of one box type in a period
type BoxCount struct {
	BoxID   uint   `json:"box_id"`
	BoxCode string `json:"box_code"`
	BoxName string `json:"box_name"`
	Count   int    `json:"count"`
}

// UserChargeFee per-user fee summary for a period
type UserChargeFee struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	OrderCount int    `json:"order_count"`
	Fee        int64  `json:"fee"`
	Total      int64  `json:"total"`
}

// UserChargeFeeInput create payload for a set of per-user charge fees
type UserChargeFeeInput struct {
	Date    string                     `json:"date" validate:"required,datetime=2006-01-02"`
	Details []UserChargeFeeDetailInput `json:"details" validate:"required,min=1,dive"`
}

type UserChargeFeeDetailInput struct {
	UserID uint  `json:"user_id" validate:"required"`
	Fee    int64 `json:"fee" validate:"min=0"`
}

type Return struct {
	ID           uint           `json:"id"`
	OrderID      string         `json:"order_id"`
	OldTracking  string         `json:"old_tracking"`
	NewTracking  string         `json:"new_tracking"`
	Channel      string         `json:"channel"`
	Store        string         `json:"store"`
	ReturnType   string         `json:"return_type"`
	ReturnReason string         `json:"return_reason"`
	CreatedAt    time.Time      `json:"created_at"`
	Details      []ReturnDetail `json:"return_details"`
}

type ReturnDetail struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type Complaint struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	OrderID     string    `json:"order_id"`
	Tracking    string    `json:"tracking"`
	Channel     string    `json:"channel"`
	Store       string    `json:"store"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID       uint   `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Variant  string `json:"variant"`
	Location string `json:"location"`
	Barcode  string `json:"barcode"`
}

type User struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	IsActive bool     `json:"is_active"`
}

type Expedition struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// QCOnlineInput QC-online submission
type QCOnlineInput struct {
	Tracking string                `json:"tracking"`
	Details  []QCOnlineDetailInput `json:"details"`
}

type QCOnlineDetailInput struct {
	BoxID    uint `json:"box_id"`
	Quantity int  `json:"quantity"`
}

type QCOnline struct {
	ID        uint      `json:"id"`
	Tracking  string    `json:"tracking"`
	CreatedAt time.Time `json:"created_at"`
}
