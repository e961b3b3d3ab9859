package migrations

import (
	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250815000001_create_catalog_tables", &createCatalogTables{})
}

type createCatalogTables struct{}

func (m *createCatalogTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{}, &models.Product{}, &models.ProductImage{})
}

func (m *createCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_images", "products", "categories")
}
