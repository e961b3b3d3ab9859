// Package routes declares the HTTP route table.
package routes

import (
	"net/http"
	"time"

	"github.com/allinbuy/api/app/controllers"
	"github.com/allinbuy/api/pkg/metrics"
	"github.com/allinbuy/api/pkg/middleware"
	"github.com/allinbuy/api/pkg/rbac"
	"github.com/allinbuy/api/pkg/reqid"
	"github.com/allinbuy/api/pkg/response"
	"github.com/allinbuy/api/pkg/router"
	"github.com/allinbuy/api/pkg/ws"
)

// Controllers bundles everything the route table mounts.
type Controllers struct {
	Products   *controllers.ProductsController
	Categories *controllers.CategoriesController
	Cart       *controllers.CartController
	Orders     *controllers.OrdersController
	Users      *controllers.UsersController
	GraphQL    http.HandlerFunc
	OrdersHub  *ws.Hub
}

// Register mounts every route on r.
func Register(r *router.Router, c Controllers) {
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/graphql", c.GraphQL)

	// Live order feed for the admin dashboard.
	r.Get("/ws/pedidos", "ws.orders", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, c.OrdersHub)
	})

	api := r.Group("/api")

	// Public catalogue.
	api.Get("/productos", "products.index", c.Products.Index)
	api.Get("/productos/destacados", "products.featured", c.Products.Featured)
	api.Get("/productos/slug/{slug}", "products.show_slug", c.Products.ShowBySlug)
	api.Get("/productos/{id}", "products.show", c.Products.Show)
	api.Get("/categorias", "categories.index", c.Categories.Index)
	api.Get("/categorias/{slug}", "categories.show", c.Categories.Show)

	// Accounts. Guest-only so an authenticated session cannot re-register.
	guest := api.Group("", middleware.OptionalAuth, rbac.Guest)
	guest.Post("/usuarios/registro", "users.register", c.Users.Register)
	guest.Post("/usuarios/login", "users.login", c.Users.Login)

	// Authenticated storefront.
	auth := api.Group("", middleware.Auth)
	auth.Get("/usuarios/perfil", "users.profile", c.Users.Profile)

	auth.Get("/carrito", "cart.index", c.Cart.Index)
	auth.Get("/carrito/resumen", "cart.summary", c.Cart.Summary)
	auth.Post("/carrito", "cart.store", c.Cart.Store)
	auth.Put("/carrito/{productId}", "cart.update", c.Cart.Update)
	auth.Delete("/carrito/{productId}", "cart.remove", c.Cart.Destroy)
	auth.Delete("/carrito", "cart.clear", c.Cart.Clear)

	auth.Post("/pedidos", "orders.checkout", c.Orders.Store)
	auth.Get("/pedidos", "orders.mine", c.Orders.Mine)
	auth.Get("/pedidos/numero/{number}", "orders.show_number", c.Orders.ShowByNumber)
	auth.Get("/pedidos/{id}", "orders.show", c.Orders.Show)
	auth.Post("/pedidos/{id}/cancelar", "orders.cancel", c.Orders.Cancel)

	// Back office.
	admin := api.Group("/admin", middleware.Auth, rbac.HasRole("admin"))
	admin.Post("/productos", "admin.products.store", c.Products.Store)
	admin.Put("/productos/{id}", "admin.products.update", c.Products.Update)
	admin.Delete("/productos/{id}", "admin.products.destroy", c.Products.Destroy)
	admin.Post("/productos/{id}/imagen", "admin.products.image", c.Products.UploadImage)

	admin.Post("/categorias", "admin.categories.store", c.Categories.Store)
	admin.Put("/categorias/{id}", "admin.categories.update", c.Categories.Update)
	admin.Delete("/categorias/{id}", "admin.categories.destroy", c.Categories.Destroy)

	admin.Get("/pedidos", "admin.orders.index", c.Orders.AdminIndex)
	admin.Put("/pedidos/{id}/estado", "admin.orders.status", c.Orders.UpdateStatus)

	admin.Get("/usuarios", "admin.users.index", c.Users.AdminIndex)
	admin.Delete("/usuarios/{id}", "admin.users.deactivate", c.Users.Deactivate)
}
