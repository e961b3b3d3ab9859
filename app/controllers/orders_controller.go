package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/middleware"
	"github.com/allinbuy/api/pkg/response"
	"github.com/allinbuy/api/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// OrdersController serves checkout plus order reads and status management.
type OrdersController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewOrdersController(checkout *services.CheckoutService, orders *services.OrderService) *OrdersController {
	return &OrdersController{checkout: checkout, orders: orders}
}

type checkoutInput struct {
	PaymentMethod   string `json:"metodo_pago"     validate:"required,in=card,bank_transfer,cash,yape,plin"`
	ShippingAddress string `json:"direccion_envio" validate:"nullable,max=500"`
	Notes           string `json:"notas"           validate:"nullable,max=500"`
}

// Store handles POST /api/pedidos. It turns the caller's cart into an
// order; stock problems come back as a 400 with the `problemas` list.
func (c *OrdersController) Store(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in checkoutInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.checkout.PlaceOrder(r.Context(), services.CheckoutInput{
		UserID:          userID,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
	})
	if err != nil {
		var stockErr *services.StockError
		switch {
		case errors.As(err, &stockErr):
			response.Problems(w, "Algunos productos no están disponibles", stockErr.Messages())
		case errors.Is(err, services.ErrEmptyCart):
			response.Error(w, http.StatusBadRequest, "El carrito está vacío")
		case errors.Is(err, services.ErrInvalidPaymentMethod):
			response.Error(w, http.StatusBadRequest, "Método de pago no válido")
		case errors.Is(err, services.ErrUserNotFound):
			response.NotFound(w, "Usuario no encontrado")
		default:
			response.Error(w, http.StatusInternalServerError, "No se pudo crear el pedido")
		}
		return
	}

	response.Created(w, "Pedido creado", order)
}

// Mine handles GET /api/pedidos, the caller's own orders.
func (c *OrdersController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	page, limit := pageParams(r)
	orders, pg, err := c.orders.ForUser(userID, page, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not list orders")
		return
	}
	response.Paginated(w, orders, pg)
}

// Show handles GET /api/pedidos/{id}. Customers can only see their own
// orders; admins can see any.
func (c *OrdersController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := c.orders.Find(id)
	if err != nil {
		if services.IsNotFound(err) {
			response.NotFound(w, "Pedido no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load order")
		return
	}

	if !c.canView(r, order) {
		response.Forbidden(w)
		return
	}
	response.Success(w, order)
}

// ShowByNumber handles GET /api/pedidos/numero/{number}.
func (c *OrdersController) ShowByNumber(w http.ResponseWriter, r *http.Request) {
	order, err := c.orders.FindByNumber(chi.URLParam(r, "number"))
	if err != nil {
		if services.IsNotFound(err) {
			response.NotFound(w, "Pedido no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load order")
		return
	}

	if !c.canView(r, order) {
		response.Forbidden(w)
		return
	}
	response.Success(w, order)
}

// Cancel handles POST /api/pedidos/{id}/cancelar. Customers may cancel
// their own pending or processing orders.
func (c *OrdersController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := c.orders.Find(id)
	if err != nil {
		if services.IsNotFound(err) {
			response.NotFound(w, "Pedido no encontrado")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if !c.canView(r, order) {
		response.Forbidden(w)
		return
	}

	order, err = c.orders.Cancel(id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotCancelable) {
			response.Error(w, http.StatusConflict, "El pedido ya no puede cancelarse")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not cancel order")
		return
	}
	response.Success(w, order)
}

// AdminIndex handles GET /api/admin/pedidos with status and user filters.
func (c *OrdersController) AdminIndex(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := repositories.OrderFilter{
		UserID: uint(queryInt(r, "usuario", 0)),
		Status: r.URL.Query().Get("estado"),
		Page:   page,
		Limit:  limit,
	}
	if from, err := time.Parse("2006-01-02", r.URL.Query().Get("desde")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse("2006-01-02", r.URL.Query().Get("hasta")); err == nil {
		// Inclusive end of day.
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}

	orders, pg, err := c.orders.List(filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not list orders")
		return
	}
	response.Paginated(w, orders, pg)
}

type statusInput struct {
	Status string `json:"estado" validate:"required,in=pendiente,procesando,enviado,entregado,cancelado"`
	Notes  string `json:"notas"  validate:"nullable,max=500"`
}

// UpdateStatus handles PUT /api/admin/pedidos/{id}/estado.
func (c *OrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var in statusInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(id, in.Status, in.Notes)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			response.NotFound(w, "Pedido no encontrado")
		case errors.Is(err, services.ErrInvalidTransition):
			response.Error(w, http.StatusConflict, "Transición de estado no permitida")
		default:
			response.Error(w, http.StatusInternalServerError, "Could not update order")
		}
		return
	}
	response.Success(w, order)
}

func (c *OrdersController) canView(r *http.Request, order models.Order) bool {
	if role, _ := middleware.RoleFromCtx(r); role == "admin" {
		return true
	}
	userID, ok := middleware.UserIDFromCtx(r)
	return ok && order.UserID == userID
}
