package models

import "gorm.io/gorm"

// CartItem is one line of a user's persistent cart.
// A user has at most one line per product; adding the same product again
// increments the quantity instead.
type CartItem struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"usuario_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"producto_id"`
	Quantity  int  `gorm:"not null;default:1"                         json:"cantidad"`

	Product Product `gorm:"foreignKey:ProductID" json:"producto,omitempty"`
}
