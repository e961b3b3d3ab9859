package services

import (
	"testing"
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB, userID uint, status string) models.Order {
	t.Helper()
	order := models.Order{
		UserID:          userID,
		Number:          "PED-20250901-" + time.Now().Format("150405.000000"),
		Status:          status,
		PaymentMethod:   models.PaymentCash,
		Total:           decimal.RequireFromString("100.00"),
		ShippingAddress: "Av. Siempre Viva 742",
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestUpdateStatus_FollowsTransitionRules(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := NewOrderService(repositories.NewOrderRepository(db))

	order := seedOrder(t, db, user.ID, models.OrderPending)

	order, err := svc.UpdateStatus(order.ID, models.OrderProcessing, "pago confirmado")
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, "pago confirmado", order.Notes)

	// Skipping straight to delivered is not allowed.
	_, err = svc.UpdateStatus(order.ID, models.OrderDelivered, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order, err = svc.UpdateStatus(order.ID, models.OrderShipped, "")
	require.NoError(t, err)

	order, err = svc.UpdateStatus(order.ID, models.OrderDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)

	// Delivered is terminal.
	_, err = svc.UpdateStatus(order.ID, models.OrderProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := NewOrderService(repositories.NewOrderRepository(db))

	pending := seedOrder(t, db, user.ID, models.OrderPending)
	cancelled, err := svc.Cancel(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	_, err = svc.Cancel(cancelled.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancelable)

	shipped := seedOrder(t, db, user.ID, models.OrderShipped)
	_, err = svc.Cancel(shipped.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancelable)

	delivered := seedOrder(t, db, user.ID, models.OrderDelivered)
	_, err = svc.Cancel(delivered.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancelable)
}

func TestForUser_ScopesAndOrders(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db)

	bob := models.User{Name: "Bob", Email: "bob@example.com", Password: "x", Role: "cliente", Active: true}
	require.NoError(t, db.Create(&bob).Error)

	seedOrder(t, db, alice.ID, models.OrderPending)
	seedOrder(t, db, alice.ID, models.OrderDelivered)
	seedOrder(t, db, bob.ID, models.OrderPending)

	svc := NewOrderService(repositories.NewOrderRepository(db))

	orders, pg, err := svc.ForUser(alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.EqualValues(t, 2, pg.Total)
	for _, o := range orders {
		assert.Equal(t, alice.ID, o.UserID)
	}
}

func TestFind_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(repositories.NewOrderRepository(db))

	_, err := svc.Find(424242)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
