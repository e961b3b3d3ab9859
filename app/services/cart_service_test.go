package services

import (
	"testing"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCartService(db *gorm.DB) *CartService {
	return NewCartService(
		repositories.NewCartRepository(db),
		repositories.NewProductRepository(db),
	)
}

func TestCartAdd_UpsertsQuantity(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Cargador USB-C", "49.90", 10)

	svc := newCartService(db)

	item, err := svc.Add(user.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	// Adding the same product again bumps the existing line.
	item, err = svc.Add(user.ID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

func TestCartAdd_GuardsAgainstStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Disco SSD", "299.00", 4)

	svc := newCartService(db)

	_, err := svc.Add(user.ID, product.ID, 3)
	require.NoError(t, err)

	// 3 already reserved; 2 more would exceed the 4 on the shelf.
	_, err = svc.Add(user.ID, product.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.Add(user.ID, product.ID, 1)
	assert.NoError(t, err)
}

func TestCartAdd_RejectsInactiveProduct(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Descontinuado", "10.00", 5)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("status", models.ProductInactive).Error)

	svc := newCartService(db)
	_, err := svc.Add(user.ID, product.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.Add(user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCartGet_SummaryAndAvailability(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	ok := seedProduct(t, db, "Libro Go", "89.50", 10)
	low := seedProduct(t, db, "Edicion Limitada", "200.00", 1)

	svc := newCartService(db)
	_, err := svc.Add(user.ID, ok.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(user.ID, low.ID, 1)
	require.NoError(t, err)

	// Stock drains after the add; the cart view must reflect it.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", low.ID).
		Update("stock", 0).Error)

	lines, summary, err := svc.Get(user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 2, summary.Lines)
	assert.Equal(t, 3, summary.Units)
	assert.True(t, summary.Total.Equal(dec("379.00")), "total = %s", summary.Total)
	assert.False(t, summary.AllReady)

	for _, line := range lines {
		if line.ProductID == low.ID {
			assert.False(t, line.Available)
			assert.Equal(t, 0, line.MaxStock)
		} else {
			assert.True(t, line.Available)
		}
	}
}

func TestCartUpdateQuantityAndRemove(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Silla Gamer", "799.00", 6)

	svc := newCartService(db)
	_, err := svc.Add(user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQuantity(user.ID, product.ID, 4))
	assert.ErrorIs(t, svc.UpdateQuantity(user.ID, product.ID, 7), ErrInsufficientStock)

	lines, _, err := svc.Get(user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	require.NoError(t, svc.Remove(user.ID, product.ID))
	lines, summary, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.True(t, summary.Total.IsZero())
}
