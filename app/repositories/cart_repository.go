package repositories

import (
	"errors"
	"time"

	"github.com/allinbuy/api/app/models"
	"gorm.io/gorm"
)

// CartRepository handles database operations for CartItem.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// ItemsWithProducts returns the user's cart lines with their products loaded.
func (r *CartRepository) ItemsWithProducts(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Preload("Product").Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// Upsert adds a product to the cart, or bumps the quantity when the line
// already exists.
func (r *CartRepository) Upsert(userID, productID uint, quantity int) (models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		return item, r.db.Create(&item).Error
	case err != nil:
		return item, err
	}

	item.Quantity += quantity
	return item, r.db.Save(&item).Error
}

// SetQuantity replaces the quantity of an existing cart line.
func (r *CartRepository) SetQuantity(userID, productID uint, quantity int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes one product line from the user's cart.
func (r *CartRepository) Remove(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// Clear empties the user's cart.
func (r *CartRepository) Clear(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// PurgeStale hard-deletes cart lines untouched for longer than maxAge.
// Run from the scheduler.
func (r *CartRepository) PurgeStale(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	res := r.db.Unscoped().
		Where("updated_at < ?", cutoff).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
