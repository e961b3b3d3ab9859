// Package seeders provides a registry of database seed functions. Each
// seeder file registers itself in init():
//
//	func init() {
//	    seeders.Register("catalog", SeedCatalog)
//	}
//
// Run via CLI: allinbuy db:seed
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// SeederFunc is the signature for a seed function. Seeders are expected to
// be idempotent so db:seed can be re-run safely.
type SeederFunc func(db *gorm.DB) error

type seeder struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	seeders []seeder
)

// Register adds a seeder to the global registry. Seeders run in
// registration order, so files that depend on others (catalog needs users
// for nothing, but orders would need both) must register later.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	seeders = append(seeders, seeder{name: name, fn: fn})
}

// RunAll executes every registered seeder, stopping on the first error.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	current := make([]seeder, len(seeders))
	copy(current, seeders)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Println("  (no seeders registered)")
		return nil
	}

	for _, s := range current {
		fmt.Printf("  • Running seeder: %s … ", s.name)
		if err := s.fn(db); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		fmt.Println("done")
	}
	return nil
}
