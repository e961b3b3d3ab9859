package services

import (
	"errors"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine is one cart line enriched with availability data for display.
type CartLine struct {
	models.CartItem
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"disponible"`
	MaxStock  int             `json:"stock_disponible"`
}

// CartSummary totals the cart for display.
type CartSummary struct {
	Lines    int             `json:"lineas"`
	Units    int             `json:"unidades"`
	Total    decimal.Decimal `json:"total"`
	AllReady bool            `json:"todo_disponible"`
}

// CartService wraps cart reads and writes with stock guards.
type CartService struct {
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(carts *repositories.CartRepository, products *repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the user's cart lines with availability and a summary.
func (s *CartService) Get(userID uint) ([]CartLine, CartSummary, error) {
	items, err := s.carts.ItemsWithProducts(userID)
	if err != nil {
		return nil, CartSummary{}, err
	}

	lines := make([]CartLine, 0, len(items))
	summary := CartSummary{Total: decimal.Zero, AllReady: true}

	for _, item := range items {
		p := item.Product
		unit := p.EffectivePrice()
		available := p.Available() && p.Stock >= item.Quantity

		line := CartLine{
			CartItem:  item,
			UnitPrice: unit,
			Subtotal:  unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Available: available,
			MaxStock:  p.Stock,
		}
		lines = append(lines, line)

		summary.Lines++
		summary.Units += item.Quantity
		summary.Total = summary.Total.Add(line.Subtotal)
		if !available {
			summary.AllReady = false
		}
	}

	return lines, summary, nil
}

// Summary returns only the totals block.
func (s *CartService) Summary(userID uint) (CartSummary, error) {
	_, summary, err := s.Get(userID)
	return summary, err
}

// Add puts quantity units of a product into the cart. The stock guard
// counts units already in the cart, so repeated adds cannot reserve more
// than the shelf holds.
func (s *CartService) Add(userID, productID uint, quantity int) (models.CartItem, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CartItem{}, ErrProductUnavailable
		}
		return models.CartItem{}, err
	}
	if !product.Available() {
		return models.CartItem{}, ErrProductUnavailable
	}

	inCart := 0
	items, err := s.carts.ItemsWithProducts(userID)
	if err != nil {
		return models.CartItem{}, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			inCart = item.Quantity
			break
		}
	}

	if product.Stock < inCart+quantity {
		return models.CartItem{}, ErrInsufficientStock
	}

	return s.carts.Upsert(userID, productID, quantity)
}

// UpdateQuantity replaces a line's quantity, guarded against stock.
func (s *CartService) UpdateQuantity(userID, productID uint, quantity int) error {
	product, err := s.products.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductUnavailable
		}
		return err
	}
	if product.Stock < quantity {
		return ErrInsufficientStock
	}

	return s.carts.SetQuantity(userID, productID, quantity)
}

// Remove deletes one line from the cart.
func (s *CartService) Remove(userID, productID uint) error {
	return s.carts.Remove(userID, productID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID uint) error {
	return s.carts.Clear(userID)
}
