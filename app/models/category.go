package models

import "gorm.io/gorm"

// Category groups products in the catalogue.
type Category struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"      json:"nombre"`
	Slug        string `gorm:"size:255;uniqueIndex"   json:"slug"`
	Description string `gorm:"type:text"              json:"descripcion"`
	Icon        string `gorm:"size:100"               json:"icono"`
	Active      bool   `gorm:"default:true"           json:"activo"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"productos,omitempty"`
}
