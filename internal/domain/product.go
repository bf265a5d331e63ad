package domain

import "time"

// Product is a sellable catalog item. Stock is an integer unit count and must
// never go negative; only active products with stock are orderable.
type Product struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string         `gorm:"index" json:"name" form:"name"`
	Description   string         `gorm:"size:4096" json:"description" form:"description"`
	Brand         string         `gorm:"size:200" json:"brand" form:"brand"`
	Size          string         `gorm:"size:64" json:"size" form:"size"`
	Stock         int            `json:"stock" form:"stock"`
	Price         float64        `json:"price" form:"price"`
	OriginalPrice *float64       `json:"original_price" form:"original_price"`
	Margin        *float64       `json:"margin" form:"margin"` // markup percentage over original price
	Active        bool           `json:"active" form:"active"`
	Categories    []Category     `gorm:"many2many:shop_product_category" json:"categories"`
	Images        []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "shop_product"
}

// ProductImage links a product to a shared gallery asset. At most one image per
// product should carry IsPrimary.
type ProductImage struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"index" json:"product_id"`
	GalleryID int64 `gorm:"index" json:"gallery_id"`
	IsPrimary bool  `json:"is_primary"`

	Gallery *GalleryImage `gorm:"foreignKey:GalleryID" json:"gallery,omitempty"`
}

// TableName Specify table name
func (ProductImage) TableName() string {
	return "shop_product_image"
}
