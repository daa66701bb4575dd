package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/metrics"
	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	Tokens       *auth.SessionTokens
	Roles        middleware.RoleSource
	RateLimiter  *middleware.RateLimiter
	SecureCookie bool
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", cfg.Handlers.Healthz).Methods(http.MethodGet)

	app := r.NewRoute().Subrouter()
	app.Use(metrics.InstrumentHandler, middleware.Session(cfg.Tokens, cfg.SecureCookie), middleware.Logging)
	if cfg.RateLimiter != nil {
		app.Use(cfg.RateLimiter.Handler)
	}

	h := cfg.Handlers

	// Catalog
	app.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	app.HandleFunc("/catalog/criteria", h.SetCriteria).Methods(http.MethodPut)
	app.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	app.HandleFunc("/products/{id}/reviews", h.AddReview).Methods(http.MethodPost)

	// Cart
	app.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	app.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	app.HandleFunc("/cart/items", h.AddToCart).Methods(http.MethodPost)
	app.HandleFunc("/cart/items/{id}", h.SetCartQuantity).Methods(http.MethodPut)
	app.HandleFunc("/cart/items/{id}", h.RemoveFromCart).Methods(http.MethodDelete)

	// Checkout and orders
	app.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
	app.HandleFunc("/orders", h.GetOrders).Methods(http.MethodGet)
	app.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)

	// Auth
	a := cfg.AuthHandlers
	app.HandleFunc("/auth/login", a.Login).Methods(http.MethodPost)
	app.HandleFunc("/auth/logout", a.Logout).Methods(http.MethodPost)
	app.HandleFunc("/auth/me", a.Me).Methods(http.MethodGet)
	app.HandleFunc("/auth/me", a.UpdateMe).Methods(http.MethodPatch)

	// Admin
	admin := app.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(cfg.Roles, identity.RoleAdmin))
	admin.HandleFunc("/products/{id}", h.PutProduct).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/orders/{id}/status", h.SetOrderStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/admin/orders", h.GetAllOrders).Methods(http.MethodGet)
	admin.HandleFunc("/admin/stats", h.GetAdminStats).Methods(http.MethodGet)

	return r
}
