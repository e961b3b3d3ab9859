// Package server boots the whole API: configuration, database, cache,
// storage, queue workers, listeners, the scheduler, and both the HTTP and
// gRPC servers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allinbuy/api/app/controllers"
	"github.com/allinbuy/api/app/jobs"
	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/app/routes"
	"github.com/allinbuy/api/app/services"
	"github.com/allinbuy/api/config"
	"github.com/allinbuy/api/pkg/cache"
	"github.com/allinbuy/api/pkg/database"
	"github.com/allinbuy/api/pkg/event"
	grpcserver "github.com/allinbuy/api/pkg/grpc"
	"github.com/allinbuy/api/pkg/logger"
	"github.com/allinbuy/api/pkg/queue"
	"github.com/allinbuy/api/pkg/router"
	"github.com/allinbuy/api/pkg/schedule"
	"github.com/allinbuy/api/pkg/storage"
	"github.com/allinbuy/api/pkg/workerpool"
	"github.com/allinbuy/api/pkg/ws"
	"gorm.io/gorm"
)

// Start boots everything and blocks until SIGINT/SIGTERM, then shuts the
// HTTP server down gracefully.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Setup()

	db, err := database.Connect()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if err := cache.Connect(); err != nil {
		// Redis is optional; featured-product caching and the Redis queue
		// driver just turn off without it.
		logger.Warn("server: redis unavailable, continuing without cache", "error", err)
	}
	storage.Connect()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run()

	// Bounded pool for the order fan-out so a burst of checkouts cannot
	// spawn an unbounded number of goroutines.
	pool := workerpool.New(8)
	defer pool.Shutdown()

	bootQueue(ctx, db)
	registerListeners(hub, pool)
	bootScheduler(ctx, db)

	r := router.New()
	if err := mountRoutes(r, db, hub); err != nil {
		return err
	}

	grpcSrv, _, err := grpcserver.Start(config.GRPCPort())
	if err != nil {
		return fmt.Errorf("start grpc: %w", err)
	}
	defer grpcserver.Stop(grpcSrv)

	// Probes report SERVING only while the HTTP side is up.
	grpcserver.SetServing(true)
	defer grpcserver.SetServing(false)

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "app", config.AppName(), "port", config.AppPort())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// NewHandler wires repositories, services, and controllers onto a fresh
// router. Exposed separately so route:list can build the table without
// opening network listeners.
func NewHandler(db *gorm.DB) (*router.Router, error) {
	r := router.New()
	if err := mountRoutes(r, db, ws.NewHub()); err != nil {
		return nil, err
	}
	return r, nil
}

func mountRoutes(r *router.Router, db *gorm.DB, hub *ws.Hub) error {
	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	productSvc := services.NewProductService(productRepo)
	cartSvc := services.NewCartService(cartRepo, productRepo)
	authSvc := services.NewAuthService(userRepo)
	orderSvc := services.NewOrderService(orderRepo)
	checkoutSvc := services.NewCheckoutService(db)

	gql, err := controllers.NewGraphQLHandler(productRepo, categoryRepo)
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	routes.Register(r, routes.Controllers{
		Products:   controllers.NewProductsController(productSvc),
		Categories: controllers.NewCategoriesController(categoryRepo),
		Cart:       controllers.NewCartController(cartSvc),
		Orders:     controllers.NewOrdersController(checkoutSvc, orderSvc),
		Users:      controllers.NewUsersController(authSvc, orderRepo),
		GraphQL:    gql,
		OrdersHub:  hub,
	})
	return nil
}

func bootQueue(ctx context.Context, db *gorm.DB) {
	if rdb := cache.Client(); rdb != nil {
		queue.SetDriver(queue.NewRedisDriver(rdb))
	}
	queue.UseDB(db)
	jobs.UseDB(db)

	queue.Register("*jobs.OrderConfirmationJob", func() queue.Job {
		return &jobs.OrderConfirmationJob{}
	})

	queue.StartWorkers(ctx, 2)
}

// registerListeners wires the order.created fan-out: the admin dashboard
// gets the order over the websocket feed, the buyer gets a confirmation
// email via the queue.
func registerListeners(hub *ws.Hub, pool *workerpool.Pool) {
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}

		fanOut := func() {
			if msg, err := json.Marshal(map[string]interface{}{
				"evento": "pedido_creado",
				"pedido": order,
			}); err == nil {
				hub.Broadcast <- msg
			}

			if err := queue.Dispatch(&jobs.OrderConfirmationJob{OrderID: order.ID}); err != nil {
				logger.Error("server: queue confirmation email", "order_number", order.Number, "error", err)
			}
		}

		if err := pool.Submit(fanOut); err != nil {
			// Pool saturated or shutting down; the fan-out is cheap enough
			// to run inline rather than drop.
			fanOut()
		}
	})
}

func bootScheduler(ctx context.Context, db *gorm.DB) {
	carts := repositories.NewCartRepository(db)

	schedule.Daily().Name("carts.purge_stale").WithoutOverlapping().Run(func() {
		purged, err := carts.PurgeStale(30 * 24 * time.Hour)
		if err != nil {
			logger.Error("schedule: purge stale carts", "error", err)
			return
		}
		if purged > 0 {
			logger.Info("schedule: purged stale cart items", "count", purged)
		}
	})

	schedule.Start(ctx)
}
