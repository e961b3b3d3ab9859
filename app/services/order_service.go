package services

import (
	"errors"
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/pkg/database"
	"gorm.io/gorm"
)

// OrderService wraps order reads and status management outside the
// checkout path.
type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// List returns orders matching filter (admin view).
func (s *OrderService) List(filter repositories.OrderFilter) ([]models.Order, database.Pagination, error) {
	return s.orders.List(filter)
}

// Find returns one order with lines and user.
func (s *OrderService) Find(id uint) (models.Order, error) {
	return s.orders.FindByID(id)
}

// FindByNumber returns one order by its human-facing number.
func (s *OrderService) FindByNumber(number string) (models.Order, error) {
	return s.orders.FindByNumber(number)
}

// ForUser returns the user's own orders, newest first.
func (s *OrderService) ForUser(userID uint, page, limit int) ([]models.Order, database.Pagination, error) {
	return s.orders.List(repositories.OrderFilter{UserID: userID, Page: page, Limit: limit})
}

// UpdateStatus moves an order to a new status, enforcing the transition
// rules on the model.
func (s *OrderService) UpdateStatus(id uint, status, notes string) (models.Order, error) {
	order, err := s.orders.FindByID(id)
	if err != nil {
		return models.Order{}, err
	}

	if !order.CanTransitionTo(status) {
		return models.Order{}, ErrInvalidTransition
	}

	order.Status = status
	if notes != "" {
		order.Notes = notes
	}
	if status == models.OrderDelivered {
		now := time.Now()
		order.DeliveredAt = &now
	}
	if err := s.orders.Update(&order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// Cancel cancels an order. Shipped, delivered, and already-cancelled
// orders are refused.
func (s *OrderService) Cancel(id uint) (models.Order, error) {
	order, err := s.orders.FindByID(id)
	if err != nil {
		return models.Order{}, err
	}

	if !order.CanTransitionTo(models.OrderCancelled) {
		return models.Order{}, ErrOrderNotCancelable
	}

	order.Status = models.OrderCancelled
	if err := s.orders.Update(&order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// IsNotFound reports whether err means the order does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
