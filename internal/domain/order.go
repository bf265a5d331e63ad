package domain

import "time"

// Order status values. Any state may transition to any other via explicit
// admin action; entering/leaving cancelled carries a stock side effect.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order is a customer checkout. Customer fields are denormalized at order
// time so later customer edits do not rewrite history.
type Order struct {
	ID               int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName     string      `gorm:"size:200" json:"customer_name" form:"customer_name"`
	CustomerLastname string      `gorm:"size:200" json:"customer_lastname" form:"customer_lastname"`
	CustomerEmail    string      `gorm:"index;size:320" json:"customer_email" form:"customer_email"`
	Total            float64     `json:"total" form:"total"`
	Status           string      `gorm:"index;size:32;default:pending" json:"status" form:"status"`
	Items            []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "shop_order"
}

// OrderItem carries the quantity and the unit price captured at order time.
// Price is copied, not joined, so historical orders are immune to later
// price changes.
type OrderItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64   `gorm:"index" json:"order_id"`
	ProductID int64   `gorm:"index" json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "shop_order_item"
}
