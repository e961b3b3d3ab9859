package seeders

import (
	"fmt"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("catalog", SeedCatalog)
}

type seedProduct struct {
	name      string
	category  string
	price     string
	salePrice string
	stock     int
	featured  bool
}

// SeedCatalog fills the demo catalogue. Idempotent; it skips entirely when
// any product already exists.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Tecnología", Icon: "laptop"},
		{Name: "Hogar", Icon: "home"},
		{Name: "Deportes", Icon: "dumbbell"},
	}
	byName := make(map[string]uint, len(categories))
	for i := range categories {
		categories[i].Slug = services.Slugify(categories[i].Name)
		categories[i].Active = true
		if err := db.Create(&categories[i]).Error; err != nil {
			return err
		}
		byName[categories[i].Name] = categories[i].ID
	}

	products := []seedProduct{
		{name: "Laptop Lenovo IdeaPad 3", category: "Tecnología", price: "2199.00", salePrice: "1999.00", stock: 15, featured: true},
		{name: "Mouse Logitech M185", category: "Tecnología", price: "49.90", stock: 80},
		{name: "Teclado Mecánico Redragon", category: "Tecnología", price: "189.00", stock: 35, featured: true},
		{name: "Audífonos Sony WH-CH520", category: "Tecnología", price: "229.00", salePrice: "199.00", stock: 25},
		{name: "Licuadora Oster 600W", category: "Hogar", price: "259.00", stock: 20},
		{name: "Juego de Ollas Record x5", category: "Hogar", price: "349.00", stock: 12, featured: true},
		{name: "Aspiradora Karcher WD1", category: "Hogar", price: "299.00", stock: 8},
		{name: "Bicicleta Montañera Aro 29", category: "Deportes", price: "1099.00", stock: 5, featured: true},
		{name: "Mancuernas 10kg Par", category: "Deportes", price: "159.00", stock: 30},
		{name: "Pelota de Fútbol Golty", category: "Deportes", price: "89.90", stock: 50},
	}

	for i, p := range products {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return err
		}

		product := models.Product{
			CategoryID: byName[p.category],
			Name:       p.name,
			Slug:       services.Slugify(p.name),
			Price:      price,
			Stock:      p.stock,
			SKU:        fmt.Sprintf("ALB-%03d", i+1),
			Status:     models.ProductActive,
			Featured:   p.featured,
		}
		if p.salePrice != "" {
			sale, err := decimal.NewFromString(p.salePrice)
			if err != nil {
				return err
			}
			product.SalePrice = &sale
		}

		if err := db.Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}
