package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product statuses.
const (
	ProductActive   = "activo"
	ProductInactive = "inactivo"
)

// Product represents a product in the catalogue.
//
// Price and SalePrice are stored as DECIMAL columns and handled with
// shopspring/decimal so money arithmetic is exact.
type Product struct {
	gorm.Model
	CategoryID  uint             `gorm:"not null;index"                json:"categoria_id"`
	SellerID    uint             `gorm:"index"                         json:"vendedor_id"`
	Name        string           `gorm:"size:255;not null;index"       json:"nombre"`
	Slug        string           `gorm:"size:255;uniqueIndex"          json:"slug"`
	Description string           `gorm:"type:text"                     json:"descripcion"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null"   json:"precio"`
	SalePrice   *decimal.Decimal `gorm:"type:decimal(10,2)"            json:"precio_oferta"`
	Stock       int              `gorm:"not null;default:0"            json:"stock"`
	SKU         string           `gorm:"size:100;uniqueIndex"          json:"sku"`
	Status      string           `gorm:"size:20;default:activo;index"  json:"estado"`
	Featured    bool             `gorm:"default:false;index"           json:"destacado"`
	SoldCount   int              `gorm:"default:0"                     json:"vendidos"`
	Rating      float64          `gorm:"default:0"                     json:"calificacion"`

	Category Category       `gorm:"foreignKey:CategoryID" json:"categoria,omitempty"`
	Images   []ProductImage `gorm:"foreignKey:ProductID"  json:"imagenes,omitempty"`
}

// EffectivePrice returns the sale price when one is set and lower than the
// regular price, otherwise the regular price. A sale at or above list never
// applies. Order lines snapshot this value at checkout.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale() {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the sale price is the one a buyer would pay.
func (p Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.IsPositive() && p.SalePrice.LessThan(p.Price)
}

// Available reports whether the product can currently be sold.
func (p Product) Available() bool {
	return p.Status == ProductActive && p.DeletedAt.Time.IsZero()
}
