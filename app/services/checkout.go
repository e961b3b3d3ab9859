package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/event"
	"github.com/allinbuy/api/pkg/logger"
	"github.com/allinbuy/api/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventOrderCreated is fired after a checkout transaction commits.
// The payload is the created models.Order with its items loaded.
const EventOrderCreated = "order.created"

// maxNumberAttempts bounds the order-number collision loop.
const maxNumberAttempts = 20

// CheckoutInput is the payload for PlaceOrder.
type CheckoutInput struct {
	UserID          uint
	PaymentMethod   string
	ShippingAddress string
	Notes           string
}

// CheckoutService converts a user's cart into an order atomically.
//
// The whole write path runs in one database transaction: order insert,
// line-item inserts with price snapshots, conditional stock decrements,
// and the cart clear. Any failure rolls everything back, so stock is never
// decremented for an order that was not created.
type CheckoutService struct {
	db *gorm.DB

	// Injected for deterministic tests.
	now     func() time.Time
	randInt func(n int) int
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{
		db:      db,
		now:     time.Now,
		randInt: rand.Intn,
	}
}

// PlaceOrder executes the checkout workflow for the given user.
//
// Returns the committed order on success. On failure it returns one of the
// sentinel errors in errors.go, a *StockError listing every blocking cart
// line, or ErrOrderCreationFailed for internal faults (cause logged, never
// exposed).
func (s *CheckoutService) PlaceOrder(ctx context.Context, in CheckoutInput) (models.Order, error) {
	log := logger.WithCtx(ctx)

	if !models.ValidPaymentMethod(in.PaymentMethod) {
		metrics.CheckoutFailures.WithLabelValues("invalid_input").Inc()
		return models.Order{}, ErrInvalidPaymentMethod
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("active = ?", true).First(&user, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.CheckoutFailures.WithLabelValues("invalid_input").Inc()
			return models.Order{}, ErrUserNotFound
		}
		log.Error("checkout: load user", "user_id", in.UserID, "error", err)
		metrics.CheckoutFailures.WithLabelValues("internal").Inc()
		return models.Order{}, ErrOrderCreationFailed
	}

	// Snapshot of the cart with products; every later step works from this.
	var lines []models.CartItem
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", in.UserID).
		Order("created_at asc").
		Find(&lines).Error; err != nil {
		log.Error("checkout: load cart", "user_id", in.UserID, "error", err)
		metrics.CheckoutFailures.WithLabelValues("internal").Inc()
		return models.Order{}, ErrOrderCreationFailed
	}
	if len(lines) == 0 {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return models.Order{}, ErrEmptyCart
	}

	// Validation pass. Collect ALL problems so the client can fix the whole
	// cart in one round trip.
	var problems []StockProblem
	for _, line := range lines {
		p := line.Product
		switch {
		case !p.Available():
			problems = append(problems, StockProblem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Unavailable: true,
			})
		case p.Stock < line.Quantity:
			problems = append(problems, StockProblem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.Stock,
			})
		}
	}
	if len(problems) > 0 {
		metrics.CheckoutFailures.WithLabelValues("stock").Inc()
		return models.Order{}, &StockError{Problems: problems}
	}

	shipping := in.ShippingAddress
	if shipping == "" {
		shipping = user.Address
	}

	order := models.Order{
		UserID:          in.UserID,
		Status:          models.OrderPending,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: shipping,
		Notes:           in.Notes,
	}

	total := decimal.Zero
	for _, line := range lines {
		unit := line.Product.EffectivePrice()
		subtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unit,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	order.Total = total

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.generateNumber(tx)
		if err != nil {
			return err
		}
		order.Number = number

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// Conditional decrement: the WHERE guard makes the update a no-op
		// when a concurrent checkout drained the stock first, so we check
		// affected rows instead of trusting the earlier read.
		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumns(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", line.Quantity),
					"sold_count": gorm.Expr("sold_count + ?", line.Quantity),
				})
			if res.Error != nil {
				return fmt.Errorf("decrement stock for product %d: %w", line.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				// Re-read for an accurate problem report.
				var p models.Product
				if err := tx.First(&p, line.ProductID).Error; err != nil {
					return fmt.Errorf("reload product %d: %w", line.ProductID, err)
				}
				return &StockError{Problems: []StockProblem{{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   line.Quantity,
					Available:   p.Stock,
					Unavailable: !p.Available(),
				}}}
			}
		}

		if err := tx.Where("user_id = ?", in.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})

	if err != nil {
		var stockErr *StockError
		switch {
		case errors.As(err, &stockErr):
			metrics.CheckoutFailures.WithLabelValues("stock").Inc()
			return models.Order{}, stockErr
		case errors.Is(err, ErrOrderNumberExhausted):
			metrics.CheckoutFailures.WithLabelValues("number_exhausted").Inc()
			return models.Order{}, ErrOrderNumberExhausted
		default:
			log.Error("checkout: transaction failed", "user_id", in.UserID, "error", err)
			metrics.CheckoutFailures.WithLabelValues("internal").Inc()
			return models.Order{}, ErrOrderCreationFailed
		}
	}

	metrics.OrdersCreated.WithLabelValues(order.PaymentMethod).Inc()
	log.Info("checkout: order placed",
		"order_number", order.Number,
		"user_id", in.UserID,
		"total", order.Total.StringFixed(2),
		"lines", len(order.Items),
	)

	// Side effects run outside the transaction; a slow listener cannot hold
	// locks open, and a failed one cannot undo the committed order.
	event.FireAsync(EventOrderCreated, order)

	return order, nil
}

// generateNumber produces a unique order number of the form
// PED-20250901-4821, retrying on collision up to maxNumberAttempts times.
func (s *CheckoutService) generateNumber(tx *gorm.DB) (string, error) {
	datePart := s.now().Format("20060102")

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		candidate := fmt.Sprintf("PED-%s-%04d", datePart, 1000+s.randInt(9000))

		var count int64
		if err := tx.Model(&models.Order{}).Where("number = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if count == 0 {
			metrics.OrderNumberAttempts.Observe(float64(attempt))
			return candidate, nil
		}
	}

	return "", ErrOrderNumberExhausted
}
