package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/auth"
	"github.com/allinbuy/api/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newCheckoutServer(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{},
		&models.ProductImage{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	))

	ctrl := NewOrdersController(
		services.NewCheckoutService(db),
		services.NewOrderService(repositories.NewOrderRepository(db)),
	)

	mux := chi.NewRouter()
	mux.Method(http.MethodPost, "/api/pedidos", middleware.Auth(http.HandlerFunc(ctrl.Store)))
	return db, mux
}

func seedBuyer(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()

	user := models.User{
		Name:     "Carla",
		Email:    "carla@example.com",
		Password: "hash",
		Address:  "Jr. Unión 500, Lima",
		Role:     "cliente",
		Active:   true,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := auth.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func postCheckout(t *testing.T, h http.Handler, token string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/pedidos", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutEndpoint_CreatesOrder(t *testing.T) {
	db, h := newCheckoutServer(t)
	user, token := seedBuyer(t, db)

	product := models.Product{
		CategoryID: 1,
		Name:       "Parlante JBL GO 3",
		Slug:       "parlante-jbl-go-3",
		Price:      decimal.RequireFromString("149.90"),
		Stock:      10,
		SKU:        "JBL-GO3",
		Status:     models.ProductActive,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.CartItem{
		UserID: user.ID, ProductID: product.ID, Quantity: 2,
	}).Error)

	rec := postCheckout(t, h, token, map[string]interface{}{
		"metodo_pago": "yape",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Number string `json:"numero"`
			Total  string `json:"total"`
			Status string `json:"estado"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Regexp(t, regexp.MustCompile(`^PED-\d{8}-\d{4}$`), body.Data.Number)
	assert.Equal(t, "299.8", decimal.RequireFromString(body.Data.Total).String())
	assert.Equal(t, models.OrderPending, body.Data.Status)

	var stock int
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Select("stock").Scan(&stock).Error)
	assert.Equal(t, 8, stock)
}

func TestCheckoutEndpoint_EmptyCartIs400(t *testing.T) {
	db, h := newCheckoutServer(t)
	_, token := seedBuyer(t, db)

	rec := postCheckout(t, h, token, map[string]interface{}{"metodo_pago": "cash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "carrito")
}

func TestCheckoutEndpoint_StockProblemsListed(t *testing.T) {
	db, h := newCheckoutServer(t)
	user, token := seedBuyer(t, db)

	product := models.Product{
		CategoryID: 1,
		Name:       "Cafetera Italiana",
		Slug:       "cafetera-italiana",
		Price:      decimal.RequireFromString("99.00"),
		Stock:      1,
		SKU:        "CAF-01",
		Status:     models.ProductActive,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.CartItem{
		UserID: user.ID, ProductID: product.ID, Quantity: 5,
	}).Error)

	rec := postCheckout(t, h, token, map[string]interface{}{"metodo_pago": "card"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success  bool     `json:"success"`
		Problems []string `json:"problemas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.Len(t, body.Problems, 1)
	assert.Contains(t, body.Problems[0], "Cafetera Italiana")
	assert.Contains(t, body.Problems[0], "solicitado 5, disponible 1")
}

func TestCheckoutEndpoint_InvalidPaymentIs422(t *testing.T) {
	db, h := newCheckoutServer(t)
	_, token := seedBuyer(t, db)

	rec := postCheckout(t, h, token, map[string]interface{}{"metodo_pago": "bitcoin"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutEndpoint_RequiresAuth(t *testing.T) {
	_, h := newCheckoutServer(t)

	rec := postCheckout(t, h, "", map[string]interface{}{"metodo_pago": "cash"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
