package models

import "gorm.io/gorm"

// User is the primary user model.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"             json:"nombre"`
	LastName string `gorm:"size:255"                      json:"apellido"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null"             json:"-"` // hashed, never serialised
	Phone    string `gorm:"size:30"                       json:"telefono"`
	Address  string `gorm:"size:500"                      json:"direccion"`
	Role     string `gorm:"size:50;default:cliente"       json:"rol"`
	Active   bool   `gorm:"default:true"                  json:"activo"`
}

// FullName returns the display name used in order confirmations.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}
