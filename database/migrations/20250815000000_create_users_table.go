// Package migrations holds every schema migration. Each file registers
// itself in init; importing the package is enough to make the runner see
// the full set.
package migrations

import (
	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250815000000_create_users_table", &createUsersTable{})
}

type createUsersTable struct{}

func (m *createUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *createUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}
