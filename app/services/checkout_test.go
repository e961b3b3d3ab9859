package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Name:    "Lucía",
		Email:   "lucia@example.com",
		Address: "Av. Arequipa 1234, Lima",
		Role:    "cliente",
		Active:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		CategoryID: 1,
		Name:       name,
		Slug:       Slugify(name),
		SKU:        "SKU-" + Slugify(name),
		Price:      dec(price),
		Stock:      stock,
		Status:     models.ProductActive,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID uint, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{
		UserID: userID, ProductID: productID, Quantity: qty,
	}).Error)
}

func fixedCheckout(db *gorm.DB) *CheckoutService {
	svc := NewCheckoutService(db)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// ─── Happy path ───────────────────────────────────────────────────────────────

func TestPlaceOrder_Success(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	laptop := seedProduct(t, db, "Laptop Gamer", "2499.90", 5)
	mouse := seedProduct(t, db, "Mouse Inalambrico", "19.99", 10)
	addToCart(t, db, user.ID, laptop.ID, 1)
	addToCart(t, db, user.ID, mouse.ID, 3)

	svc := fixedCheckout(db)
	order, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: models.PaymentYape,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^PED-20250901-\d{4}$`, order.Number)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentYape, order.PaymentMethod)
	assert.Equal(t, user.Address, order.ShippingAddress) // defaults to profile address
	require.Len(t, order.Items, 2)

	// 2499.90 + 3 * 19.99 = 2559.87, exactly.
	assert.True(t, order.Total.Equal(dec("2559.87")), "total = %s", order.Total)

	// Stock decremented by exactly the ordered quantities. Each lookup
	// needs its own struct or gorm carries the first primary key into the
	// second query's conditions.
	var gotLaptop models.Product
	require.NoError(t, db.First(&gotLaptop, laptop.ID).Error)
	assert.Equal(t, 4, gotLaptop.Stock)
	assert.Equal(t, 1, gotLaptop.SoldCount)

	var gotMouse models.Product
	require.NoError(t, db.First(&gotMouse, mouse.ID).Error)
	assert.Equal(t, 7, gotMouse.Stock)

	// Cart cleared.
	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	// Order and items persisted.
	var stored models.Order
	require.NoError(t, db.Preload("Items").Where("number = ?", order.Number).First(&stored).Error)
	assert.Len(t, stored.Items, 2)
}

func TestPlaceOrder_SnapshotsSalePrice(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Audifonos", "99.90", 5)
	sale := dec("79.90")
	product.SalePrice = &sale
	require.NoError(t, db.Save(&product).Error)
	addToCart(t, db, user.ID, product.ID, 2)

	svc := fixedCheckout(db)
	order, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: models.PaymentCard,
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(sale))
	assert.True(t, order.Items[0].Subtotal.Equal(dec("159.80")))
	assert.True(t, order.Total.Equal(dec("159.80")))

	// Later price changes must not touch the stored snapshot.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", dec("999.99")).Error)
	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.True(t, item.UnitPrice.Equal(sale))
}

func TestPlaceOrder_IgnoresSaleAboveListPrice(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Cargador USB", "10.00", 5)
	sale := dec("15.00")
	product.SalePrice = &sale
	require.NoError(t, db.Save(&product).Error)
	addToCart(t, db, user.ID, product.ID, 1)

	svc := fixedCheckout(db)
	order, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: models.PaymentCard,
	})
	require.NoError(t, err)

	// A sale above list never applies; the buyer pays the list price.
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(dec("10.00")), "unit = %s", order.Items[0].UnitPrice)
	assert.True(t, order.Total.Equal(dec("10.00")), "total = %s", order.Total)
}

// ─── Input validation ─────────────────────────────────────────────────────────

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	svc := fixedCheckout(db)
	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: "bitcoin",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	svc := fixedCheckout(db)
	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        999,
		PaymentMethod: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	svc := fixedCheckout(db)
	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

// ─── Stock validation ─────────────────────────────────────────────────────────

func TestPlaceOrder_CollectsAllStockProblems(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	scarce := seedProduct(t, db, "Teclado Mecanico", "349.00", 1)
	gone := seedProduct(t, db, "Monitor Curvo", "1299.00", 10)
	fine := seedProduct(t, db, "Mousepad", "25.00", 50)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", gone.ID).
		Update("status", models.ProductInactive).Error)

	addToCart(t, db, user.ID, scarce.ID, 3)
	addToCart(t, db, user.ID, gone.ID, 1)
	addToCart(t, db, user.ID, fine.ID, 2)

	svc := fixedCheckout(db)
	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: models.PaymentPlin,
	})

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Problems, 2, "both blocking lines must be reported")

	all := strings.Join(stockErr.Messages(), "\n")
	assert.Contains(t, all, "Teclado Mecanico")
	assert.Contains(t, all, "solicitado 3, disponible 1")
	assert.Contains(t, all, "Monitor Curvo ya no está disponible")
	assert.NotContains(t, all, "Mousepad")

	// Nothing was written: no order, stock untouched, cart intact.
	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var p models.Product
	require.NoError(t, db.First(&p, scarce.ID).Error)
	assert.Equal(t, 1, p.Stock)

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&lines).Error)
	assert.EqualValues(t, 3, lines)
}

func TestPlaceOrder_SequentialBuyersNeverOversell(t *testing.T) {
	db := newTestDB(t)
	first := seedUser(t, db)
	second := models.User{Name: "Marco", Email: "marco@example.com", Role: "cliente", Active: true}
	require.NoError(t, db.Create(&second).Error)

	product := seedProduct(t, db, "Consola", "1899.00", 3)
	addToCart(t, db, first.ID, product.ID, 2)
	addToCart(t, db, second.ID, product.ID, 2)

	svc := fixedCheckout(db)

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID: first.ID, PaymentMethod: models.PaymentCard,
	})
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID: second.ID, PaymentMethod: models.PaymentCard,
	})
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)

	// Exactly one order's worth of stock left; the loser's cart survives.
	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 1, p.Stock)

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", second.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

// The WHERE guard on the decrement is what holds the no-oversell invariant
// under true concurrency; exercise it directly at the SQL level.
func TestConditionalDecrementGuard(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Parlante", "159.00", 2)

	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, 5).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", 5),
			"sold_count": gorm.Expr("sold_count + ?", 5),
		})
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 2, p.Stock, "guarded update must not go negative")
}

// ─── Order numbers ────────────────────────────────────────────────────────────

func TestPlaceOrder_RetriesNumberCollision(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Camara Web", "120.00", 5)
	addToCart(t, db, user.ID, product.ID, 1)

	// Occupy the number the first attempt will produce.
	require.NoError(t, db.Create(&models.Order{
		Number: "PED-20250901-1000", UserID: user.ID,
		Status: models.OrderPending, PaymentMethod: models.PaymentCash,
		Total: dec("1.00"),
	}).Error)

	svc := fixedCheckout(db)
	calls := 0
	svc.randInt = func(n int) int {
		calls++
		if calls == 1 {
			return 0 // collides with the seeded PED-20250901-1000
		}
		return 777
	}

	order, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID: user.ID, PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "PED-20250901-1777", order.Number)
	assert.Equal(t, 2, calls)
}

func TestPlaceOrder_NumberExhaustionRollsBack(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Impresora", "499.00", 5)
	addToCart(t, db, user.ID, product.ID, 1)

	require.NoError(t, db.Create(&models.Order{
		Number: "PED-20250901-1000", UserID: user.ID,
		Status: models.OrderPending, PaymentMethod: models.PaymentCash,
		Total: dec("1.00"),
	}).Error)

	svc := fixedCheckout(db)
	svc.randInt = func(n int) int { return 0 } // every attempt collides

	_, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID: user.ID, PaymentMethod: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrOrderNumberExhausted)

	// Only the seeded order exists; stock and cart untouched.
	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)

	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 5, p.Stock)

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

// ─── Side effects ─────────────────────────────────────────────────────────────

func TestPlaceOrder_FiresOrderCreatedEvent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Tablet", "899.00", 5)
	addToCart(t, db, user.ID, product.ID, 1)

	defer event.Flush()
	received := make(chan models.Order, 1)
	event.Listen(EventOrderCreated, func(payload interface{}) {
		if order, ok := payload.(models.Order); ok {
			received <- order
		}
	})

	svc := fixedCheckout(db)
	placed, err := svc.PlaceOrder(context.Background(), CheckoutInput{
		UserID: user.ID, PaymentMethod: models.PaymentBankTransfer,
	})
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, placed.Number, got.Number)
		assert.Len(t, got.Items, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("order.created event was not fired")
	}
}
