package domain

import "time"

// Category groups products for the storefront. Name is unique; an active
// category, or one that still has products, cannot be deleted.
type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:200" json:"name" form:"name"`
	Active    bool      `json:"active" form:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "shop_category"
}
