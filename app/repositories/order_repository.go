package repositories

import (
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/database"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. From/To bound created_at for the
// admin date-range view.
type OrderFilter struct {
	UserID uint
	Status string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// OrderRepository handles database operations for Order and OrderItem.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// List returns orders matching filter, newest first, with pagination.
func (r *OrderRepository) List(filter OrderFilter) ([]models.Order, database.Pagination, error) {
	query := r.db.Model(&models.Order{}).Preload("Items")

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}

	var orders []models.Order
	pagination, err := database.Paginate(query.Order("created_at desc"), filter.Page, filter.Limit, &orders)
	return orders, pagination, err
}

// FindByID looks up an order with its items and user.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("User").First(&order, id).Error
	return order, err
}

// FindByNumber looks up an order by its human-facing number.
func (r *OrderRepository) FindByNumber(number string) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("User").
		Where("number = ?", number).First(&order).Error
	return order, err
}

// NumberExists reports whether an order with the given number exists.
func (r *OrderRepository) NumberExists(number string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("number = ?", number).Count(&count).Error
	return count > 0, err
}

// Update persists changes to an existing order.
func (r *OrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}
