package domain

import "time"

// GalleryImage is an uploaded asset shared across products. ImagePath is the
// stored file name under the uploads dir; PreviewPath the derived thumbnail.
type GalleryImage struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"index;size:255" json:"name" form:"name"`
	ImagePath   string    `gorm:"size:1024" json:"image_path"`
	PreviewPath string    `gorm:"size:1024" json:"preview_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (GalleryImage) TableName() string {
	return "shop_gallery"
}
