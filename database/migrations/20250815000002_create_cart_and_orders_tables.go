package migrations

import (
	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250815000002_create_cart_and_orders_tables", &createCartAndOrdersTables{})
}

type createCartAndOrdersTables struct{}

func (m *createCartAndOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.CartItem{}, &models.Order{}, &models.OrderItem{})
}

func (m *createCartAndOrdersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders", "cart_items")
}
