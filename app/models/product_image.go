package models

import "gorm.io/gorm"

// ProductImage is one image attached to a product.
// Path is the storage key; the public URL is resolved via pkg/storage.
type ProductImage struct {
	gorm.Model
	ProductID uint   `gorm:"not null;index"     json:"producto_id"`
	Path      string `gorm:"size:500;not null"  json:"ruta"`
	Main      bool   `gorm:"default:false"      json:"principal"`
	SortOrder int    `gorm:"default:0"          json:"orden"`
}
