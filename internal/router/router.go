package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mesabook/api/internal/config"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/handler"
	mw "github.com/mesabook/api/internal/middleware"
	"github.com/mesabook/api/internal/service"
	"github.com/mesabook/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Auth endpoints and the websocket upgrade are public; everything else
// requires a valid token, and the revenue dashboard additionally requires
// an active subscription.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",       // web dashboard dev server
			"https://app.mesabook.com",    // production dashboard
			"https://stg.mesabook.com",    // staging dashboard
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{code}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		// Restaurants
		restaurantHandler := handler.NewRestaurantHandler(queries)
		restaurantHandler.RegisterRoutes(r)

		// Orders
		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		})
		orderHandler := handler.NewOrderHandler(orderService, queries, hub)
		orderHandler.RegisterRoutes(r)

		// Menu
		menuService := service.NewMenuService(pool, func(db database.DBTX) service.MenuStore {
			return database.New(db)
		})
		menuHandler := handler.NewMenuHandler(menuService, queries)
		menuHandler.RegisterRoutes(r)

		// Stocks
		stockService := service.NewStockService(pool, func(db database.DBTX) service.StockStore {
			return database.New(db)
		})
		stockHandler := handler.NewStockHandler(stockService, queries)
		stockHandler.RegisterRoutes(r)

		// Bills
		billHandler := handler.NewBillHandler(queries)
		billHandler.RegisterRoutes(r)

		// Subscriptions
		subscriptionHandler := handler.NewSubscriptionHandler(queries)
		subscriptionHandler.RegisterRoutes(r)

		// Messages
		messageHandler := handler.NewMessageHandler(queries, hub)
		messageHandler.RegisterRoutes(r)

		// Revenue dashboard (gated behind an active subscription)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSubscription(queries))

			revenueHandler := handler.NewRevenueHandler(queries)
			revenueHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
