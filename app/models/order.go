package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses. Transitions are enforced by the order service:
// pending → processing → shipped → delivered; pending/processing → cancelled.
const (
	OrderPending    = "pendiente"
	OrderProcessing = "procesando"
	OrderShipped    = "enviado"
	OrderDelivered  = "entregado"
	OrderCancelled  = "cancelado"
)

// Payment methods accepted at checkout.
const (
	PaymentCard         = "card"
	PaymentBankTransfer = "bank_transfer"
	PaymentCash         = "cash"
	PaymentYape         = "yape"
	PaymentPlin         = "plin"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentCash, PaymentYape, PaymentPlin:
		return true
	}
	return false
}

// Order is a placed order. Number is the human-facing identifier in the
// form PED-20250901-4821 and is unique across all orders.
type Order struct {
	gorm.Model
	Number          string          `gorm:"size:30;uniqueIndex;not null" json:"numero"`
	UserID          uint            `gorm:"not null;index"               json:"usuario_id"`
	Status          string          `gorm:"size:20;default:pendiente;index" json:"estado"`
	PaymentMethod   string          `gorm:"size:30;not null"             json:"metodo_pago"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"total"`
	ShippingAddress string          `gorm:"size:500"                     json:"direccion_envio"`
	Notes           string          `gorm:"size:500"                     json:"notas"`
	DeliveredAt     *time.Time      `json:"fecha_entrega"`

	User  User        `gorm:"foreignKey:UserID"  json:"usuario,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one line of an order. UnitPrice and Subtotal are snapshots
// taken at checkout; later product price changes do not affect them.
type OrderItem struct {
	gorm.Model
	OrderID     uint            `gorm:"not null;index"              json:"pedido_id"`
	ProductID   uint            `gorm:"not null;index"              json:"producto_id"`
	ProductName string          `gorm:"size:255;not null"           json:"producto_nombre"`
	Quantity    int             `gorm:"not null"                    json:"cantidad"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"precio_unitario"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`

	Product Product `gorm:"foreignKey:ProductID" json:"producto,omitempty"`
}

// CanTransitionTo reports whether the order may move from its current
// status to next.
func (o Order) CanTransitionTo(next string) bool {
	switch o.Status {
	case OrderPending:
		return next == OrderProcessing || next == OrderCancelled
	case OrderProcessing:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}
