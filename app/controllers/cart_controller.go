package controllers

import (
	"errors"
	"net/http"

	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/pkg/middleware"
	"github.com/allinbuy/api/pkg/response"
	"github.com/allinbuy/api/pkg/validate"
)

// CartController serves the authenticated user's cart.
type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// Index handles GET /api/carrito.
func (c *CartController) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	lines, summary, err := c.cart.Get(userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	response.Success(w, map[string]interface{}{
		"items":   lines,
		"resumen": summary,
	})
}

// Summary handles GET /api/carrito/resumen, the lightweight totals the
// storefront polls for the cart badge.
func (c *CartController) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	summary, err := c.cart.Summary(userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not load cart summary")
		return
	}
	response.Success(w, summary)
}

type cartAddInput struct {
	ProductID uint `json:"producto_id" validate:"required,gt=0"`
	Quantity  int  `json:"cantidad"    validate:"required,gte=1,lte=99"`
}

// Store handles POST /api/carrito.
func (c *CartController) Store(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in cartAddInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	item, err := c.cart.Add(userID, in.ProductID, in.Quantity)
	if err != nil {
		c.writeCartError(w, err)
		return
	}
	response.Created(w, "Producto agregado al carrito", item)
}

type cartUpdateInput struct {
	Quantity int `json:"cantidad" validate:"required,gte=1,lte=99"`
}

// Update handles PUT /api/carrito/{productId}.
func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	productID, ok := uintParam(r, "productId")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var in cartUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	if err := c.cart.UpdateQuantity(userID, productID, in.Quantity); err != nil {
		c.writeCartError(w, err)
		return
	}
	response.Message(w, "Cantidad actualizada")
}

// Destroy handles DELETE /api/carrito/{productId}.
func (c *CartController) Destroy(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	productID, ok := uintParam(r, "productId")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := c.cart.Remove(userID, productID); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not remove item")
		return
	}
	response.Message(w, "Producto eliminado del carrito")
}

// Clear handles DELETE /api/carrito.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	if err := c.cart.Clear(userID); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not clear cart")
		return
	}
	response.Message(w, "Carrito vaciado")
}

func (c *CartController) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProductUnavailable):
		response.NotFound(w, "Producto no disponible")
	case errors.Is(err, services.ErrInsufficientStock):
		response.Error(w, http.StatusBadRequest, "Stock insuficiente")
	default:
		response.Error(w, http.StatusInternalServerError, "Could not update cart")
	}
}
