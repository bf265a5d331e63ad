package domain

import "time"

// Customer is created or updated idempotently by email during the
// pre-checkout registration step. Order statistics are derived by
// aggregation, never stored here.
type Customer struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email           string     `gorm:"uniqueIndex;size:320" json:"email" form:"email"`
	Name            string     `gorm:"size:200" json:"name" form:"name"`
	Lastname        string     `gorm:"size:200" json:"lastname" form:"lastname"`
	FirstConnection *time.Time `json:"first_connection"`
	LastConnection  *time.Time `json:"last_connection"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "shop_customer"
}
