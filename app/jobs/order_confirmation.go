// Package jobs defines the background jobs dispatched by the API.
// Register every job type at boot so the queue workers can deserialise it:
//
//	jobs.UseDB(db)
//	queue.Register("*jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
package jobs

import (
	"fmt"
	"strings"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/config"
	"github.com/allinbuy/api/pkg/logger"
	"github.com/allinbuy/api/pkg/mail"
	"gorm.io/gorm"
)

var db *gorm.DB

// UseDB hands the jobs package its database handle. Jobs reload their
// records on Handle; the queued payload only carries IDs.
func UseDB(conn *gorm.DB) { db = conn }

// OrderConfirmationJob emails the buyer after a checkout commits.
type OrderConfirmationJob struct {
	OrderID uint `json:"order_id"`
}

func (j *OrderConfirmationJob) Handle() error {
	if db == nil {
		return fmt.Errorf("jobs: database not configured")
	}

	var order models.Order
	if err := db.Preload("Items").Preload("User").First(&order, j.OrderID).Error; err != nil {
		return fmt.Errorf("load order %d: %w", j.OrderID, err)
	}

	if config.MailUsername() == "" {
		// No SMTP in this environment; retrying will not help.
		logger.Warn("jobs: mail not configured, skipping confirmation",
			"order_number", order.Number)
		return nil
	}

	return mail.To(order.User.Email).
		Subject(fmt.Sprintf("Tu pedido %s fue recibido", order.Number)).
		Body(confirmationBody(order)).
		Send()
}

func confirmationBody(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Gracias por tu compra, %s</h1>", order.User.FullName())
	fmt.Fprintf(&b, "<p>Pedido <strong>%s</strong></p>", order.Number)
	b.WriteString("<ul>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%d x %s: S/ %s</li>",
			item.Quantity, item.ProductName, item.Subtotal.StringFixed(2))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>Total: <strong>S/ %s</strong></p>", order.Total.StringFixed(2))
	fmt.Fprintf(&b, "<p>Enviaremos tu pedido a: %s</p>", order.ShippingAddress)
	return b.String()
}
