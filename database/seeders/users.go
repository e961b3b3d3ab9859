package seeders

import (
	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("users", SeedUsers)
}

// SeedUsers creates the default admin plus one demo customer. Safe to run
// repeatedly; existing emails are left untouched.
func SeedUsers(db *gorm.DB) error {
	users := []struct {
		user     models.User
		password string
	}{
		{
			user: models.User{
				Name:  "Admin",
				Email: "admin@allinbuy.test",
				Role:  "admin",
			},
			password: "admin12345",
		},
		{
			user: models.User{
				Name:     "María",
				LastName: "Quispe",
				Email:    "maria@allinbuy.test",
				Role:     "cliente",
				Phone:    "999888777",
				Address:  "Av. Larco 1301, Miraflores, Lima",
			},
			password: "cliente123",
		},
	}

	for _, entry := range users {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", entry.user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hashed, err := auth.HashPassword(entry.password)
		if err != nil {
			return err
		}
		entry.user.Password = hashed
		entry.user.Active = true

		if err := db.Create(&entry.user).Error; err != nil {
			return err
		}
	}
	return nil
}
