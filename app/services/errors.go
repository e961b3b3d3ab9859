package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Controllers map these onto
// HTTP statuses; anything else is treated as an internal error.
var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNumberExhausted = errors.New("could not generate a unique order number")

	// ErrOrderCreationFailed is deliberately generic. The underlying cause
	// is logged server-side and never surfaced to clients.
	ErrOrderCreationFailed = errors.New("order could not be created")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderNotCancelable = errors.New("order can no longer be cancelled")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product not available")
)

// StockProblem describes one cart line that blocks checkout.
type StockProblem struct {
	ProductID   uint   `json:"producto_id"`
	ProductName string `json:"producto_nombre"`
	Requested   int    `json:"solicitado"`
	Available   int    `json:"disponible"`
	Unavailable bool   `json:"no_disponible"` // product inactive or deleted
}

// Message renders the problem as the human-readable string returned in the
// `problemas` field of the checkout response.
func (p StockProblem) Message() string {
	if p.Unavailable {
		return fmt.Sprintf("%s ya no está disponible", p.ProductName)
	}
	return fmt.Sprintf("Stock insuficiente para %s: solicitado %d, disponible %d",
		p.ProductName, p.Requested, p.Available)
}

// StockError aggregates every stock or availability problem found in one
// checkout attempt, so the client can fix the whole cart in one pass.
type StockError struct {
	Problems []StockProblem
}

func (e *StockError) Error() string {
	return fmt.Sprintf("checkout blocked by %d stock problem(s)", len(e.Problems))
}

// Messages returns the per-line problem strings.
func (e *StockError) Messages() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.Message()
	}
	return out
}
