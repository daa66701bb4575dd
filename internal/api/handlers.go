package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/checkout"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/query"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// LoginRedirect is where a shopper is sent when checkout needs a login.
const LoginRedirect = "/login?redirect=cart"

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// Catalog Handlers

func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.Catalog(middleware.GetSessionID(r.Context()))
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type criteriaRequest struct {
	Category *string         `json:"category"`
	SortBy   *catalog.SortBy `json:"sort_by"`
	Search   *string         `json:"search"`
}

// SetCriteria applies any of category, sort and search, then returns the new view
func (h *Handlers) SetCriteria(w http.ResponseWriter, r *http.Request) {
	var req criteriaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionID := middleware.GetSessionID(r.Context())
	ctx := r.Context()

	if req.Category != nil {
		if err := h.cmdHandler.SetCategoryFilter(ctx, command.SetCategoryFilter{SessionID: sessionID, Category: *req.Category}); err != nil {
			respondCommandError(w, err)
			return
		}
	}
	if req.SortBy != nil {
		if err := h.cmdHandler.SetSort(ctx, command.SetSort{SessionID: sessionID, SortBy: *req.SortBy}); err != nil {
			respondCommandError(w, err)
			return
		}
	}
	if req.Search != nil {
		if err := h.cmdHandler.SetSearch(ctx, command.SetSearch{SessionID: sessionID, Query: *req.Search}); err != nil {
			respondCommandError(w, err)
			return
		}
	}

	h.GetCatalog(w, r)
}

// Product Handlers

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.queryHandler.Product(mux.Vars(r)["id"])
	if !ok {
		respondJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) PutProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = mux.Vars(r)["id"]

	saved, err := h.cmdHandler.UpsertProduct(r.Context(), command.UpsertProduct{Product: p})
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.cmdHandler.RemoveProduct(r.Context(), command.RemoveProduct{ProductID: mux.Vars(r)["id"]})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AddReview(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddReview
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())
	cmd.ProductID = mux.Vars(r)["id"]

	review, applied, err := h.cmdHandler.AddReview(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	if !applied {
		respondJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.Cart(middleware.GetSessionID(r.Context()))
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddToCart
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	_, applied, err := h.cmdHandler.AddToCart(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	if !applied {
		respondJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	h.GetCart(w, r)
}

func (h *Handlers) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd := command.SetCartQuantity{
		SessionID: middleware.GetSessionID(r.Context()),
		ProductID: mux.Vars(r)["id"],
		Quantity:  req.Quantity,
	}

	applied, err := h.cmdHandler.SetCartQuantity(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	if !applied {
		respondJSONError(w, "item not in cart", http.StatusNotFound)
		return
	}
	h.GetCart(w, r)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromCart{
		SessionID: middleware.GetSessionID(r.Context()),
		ProductID: mux.Vars(r)["id"],
	}
	if _, err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	h.GetCart(w, r)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{SessionID: middleware.GetSessionID(r.Context())}); err != nil {
		respondCommandError(w, err)
		return
	}
	h.GetCart(w, r)
}

// Checkout Handlers

type checkoutResponse struct {
	checkout.Result
	Redirect string `json:"redirect,omitempty"`
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var cmd command.Checkout
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	res, err := h.cmdHandler.Checkout(r.Context(), cmd)
	if err != nil {
		respondJSONError(w, "checkout failed", http.StatusInternalServerError)
		return
	}

	switch res.Outcome {
	case checkout.OutcomeCompleted:
		respondJSON(w, http.StatusCreated, checkoutResponse{Result: res})
	case checkout.OutcomeNeedsAuth:
		respondJSON(w, http.StatusUnauthorized, checkoutResponse{Result: res, Redirect: LoginRedirect})
	default:
		respondJSON(w, http.StatusConflict, checkoutResponse{Result: res})
	}
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.Orders(middleware.GetSessionID(r.Context()))
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.queryHandler.Order(middleware.GetSessionID(r.Context()), mux.Vars(r)["id"])
	if !ok {
		respondJSONError(w, "order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status order.Status `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	o, applied, err := h.cmdHandler.SetOrderStatus(r.Context(), command.SetOrderStatus{OrderID: mux.Vars(r)["id"], Status: req.Status})
	if err != nil {
		respondCommandError(w, err)
		return
	}
	if !applied {
		respondJSONError(w, "order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.AllOrders())
}

func (h *Handlers) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.AdminStats())
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads an optional JSON body; an empty body leaves v untouched
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func respondCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, command.ErrInvalidEmail):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, command.ErrLoginRequired):
		respondJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, catalog.ErrOutOfStock):
		respondJSONError(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("[API] Unexpected error: %v", err)
		respondJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
