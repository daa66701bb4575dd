package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/checkout"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/engine"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/metrics"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrInvalidEmail  = errors.New("email is required")
)

// Aggregate ids for collection-wide events that do not belong to one entity.
const (
	catalogAggregateID = "catalog"
	ordersAggregateID  = "orders"
)

// Handler applies intents to the engine. Every method returns whether state
// changed; a missing product or order id leaves state untouched and is
// reported as not applied rather than as an error. Errors are reserved for
// malformed input.
type Handler struct {
	engine     *engine.Engine
	events     store.EventStoreInterface
	products   store.ProductRepository
	orders     store.OrderRepository
	adminEmail string
	now        func() time.Time
}

type Option func(*Handler)

// WithProductRepository writes catalog changes through to r.
func WithProductRepository(r store.ProductRepository) Option {
	return func(h *Handler) { h.products = r }
}

// WithOrderRepository writes placed orders and status changes through to r.
func WithOrderRepository(r store.OrderRepository) Option {
	return func(h *Handler) { h.orders = r }
}

func NewHandler(e *engine.Engine, events store.EventStoreInterface, adminEmail string, opts ...Option) *Handler {
	h := &Handler{
		engine:     e,
		events:     events,
		adminEmail: adminEmail,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ============================================
// Catalog
// ============================================

// IngestProducts replaces the whole catalog. Persisted products missing
// from the new set are deleted.
func (h *Handler) IngestProducts(ctx context.Context, cmd IngestProducts) {
	previous := h.engine.Catalog.Products()
	h.engine.Catalog.Ingest(cmd.Products)
	if h.products != nil {
		for _, p := range previous {
			if _, ok := h.engine.Catalog.Get(p.ID); ok {
				continue
			}
			if err := h.products.DeleteProduct(ctx, p.ID); err != nil {
				log.Printf("[Command] Failed to delete product %s: %v", p.ID, err)
			}
		}
		for _, p := range h.engine.Catalog.Products() {
			h.persistProduct(ctx, p)
		}
	}
	h.emit(ctx, catalogAggregateID, catalog.AggregateType, catalog.EventProductsIngested,
		catalog.ProductsIngested{Count: len(cmd.Products), IngestedAt: h.now()})
	metrics.RecordIntent("IngestProducts", true)
}

// UpsertProduct replaces a product in place or appends it
func (h *Handler) UpsertProduct(ctx context.Context, cmd UpsertProduct) (catalog.Product, error) {
	if err := h.engine.Catalog.Upsert(cmd.Product); err != nil {
		metrics.RecordIntent("UpsertProduct", false)
		return catalog.Product{}, err
	}
	p, _ := h.engine.Catalog.Get(cmd.Product.ID)
	h.persistProduct(ctx, p)
	h.emit(ctx, p.ID, catalog.AggregateType, catalog.EventProductUpserted,
		catalog.ProductUpserted{Product: p, UpdatedAt: h.now()})
	metrics.RecordIntent("UpsertProduct", true)
	return p, nil
}

// RemoveProduct deletes a product; an unknown id is a no-op
func (h *Handler) RemoveProduct(ctx context.Context, cmd RemoveProduct) bool {
	if !h.engine.Catalog.Remove(cmd.ProductID) {
		metrics.RecordIntent("RemoveProduct", false)
		return false
	}
	if h.products != nil {
		if err := h.products.DeleteProduct(ctx, cmd.ProductID); err != nil {
			log.Printf("[Command] Failed to delete product %s: %v", cmd.ProductID, err)
		}
	}
	h.emit(ctx, cmd.ProductID, catalog.AggregateType, catalog.EventProductRemoved,
		catalog.ProductRemoved{ProductID: cmd.ProductID, RemovedAt: h.now()})
	metrics.RecordIntent("RemoveProduct", true)
	return true
}

// AddReview appends a review written by the session's user
func (h *Handler) AddReview(ctx context.Context, cmd AddReview) (catalog.Review, bool, error) {
	var author string
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		u, ok := s.Gate.User()
		if !ok {
			return ErrLoginRequired
		}
		author = u.Name
		return nil
	})
	if err != nil {
		return catalog.Review{}, false, err
	}

	now := h.now()
	review, err := h.engine.Catalog.AddReview(cmd.ProductID, catalog.Review{
		ID:      uuid.NewString(),
		User:    author,
		Rating:  cmd.Rating,
		Comment: strings.TrimSpace(cmd.Comment),
		Date:    now.UTC().Format(time.DateOnly),
	})
	if errors.Is(err, catalog.ErrProductNotFound) {
		metrics.RecordIntent("AddReview", false)
		return catalog.Review{}, false, nil
	}
	if err != nil {
		return catalog.Review{}, false, err
	}

	if p, ok := h.engine.Catalog.Get(cmd.ProductID); ok {
		h.persistProduct(ctx, p)
	}
	h.emit(ctx, cmd.ProductID, catalog.AggregateType, catalog.EventReviewAdded,
		catalog.ReviewAdded{ProductID: cmd.ProductID, Review: review, AddedAt: now})
	metrics.RecordIntent("AddReview", true)
	return review, true, nil
}

// ============================================
// Criteria
// ============================================

// SetCategoryFilter selects "all" or a known category
func (h *Handler) SetCategoryFilter(ctx context.Context, cmd SetCategoryFilter) error {
	category := strings.TrimSpace(cmd.Category)
	if category == "" {
		category = catalog.AllCategories
	}
	if category != catalog.AllCategories && !h.engine.Catalog.IsKnownCategory(category) {
		metrics.RecordIntent("SetCategoryFilter", false)
		return fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, category)
	}
	metrics.RecordIntent("SetCategoryFilter", true)
	return h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		s.Criteria.SetCategory(category)
		return nil
	})
}

// SetSort stores the sort criterion; unrecognized values derive as name order
func (h *Handler) SetSort(ctx context.Context, cmd SetSort) error {
	metrics.RecordIntent("SetSort", true)
	return h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		s.Criteria.SetSort(cmd.SortBy)
		return nil
	})
}

func (h *Handler) SetSearch(ctx context.Context, cmd SetSearch) error {
	metrics.RecordIntent("SetSearch", true)
	return h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		s.Criteria.SetSearch(cmd.Query)
		return nil
	})
}

// ============================================
// Cart
// ============================================

// AddToCart snapshots the current product into the session's cart
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (cart.Item, bool, error) {
	p, ok := h.engine.Catalog.Get(cmd.ProductID)
	if !ok {
		metrics.RecordIntent("AddToCart", false)
		return cart.Item{}, false, nil
	}
	if p.Stock <= 0 {
		metrics.RecordIntent("AddToCart", false)
		return cart.Item{}, false, fmt.Errorf("%w: %s", catalog.ErrOutOfStock, p.ID)
	}

	var item cart.Item
	var qty int
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		before, _ := s.Cart.Item(p.ID)
		item = s.Cart.Add(p, cmd.Quantity)
		qty = item.Quantity - before.Quantity
		return nil
	})
	if err != nil {
		return cart.Item{}, false, err
	}

	h.emit(ctx, cmd.SessionID, cart.AggregateType, cart.EventItemAdded,
		cart.ItemAddedToCart{SessionID: cmd.SessionID, ProductID: p.ID, Quantity: qty, AddedAt: h.now()})
	metrics.RecordIntent("AddToCart", true)
	return item, true, nil
}

// SetCartQuantity sets a line's quantity, clamped to at least 1
func (h *Handler) SetCartQuantity(ctx context.Context, cmd SetCartQuantity) (bool, error) {
	var applied bool
	var qty int
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		applied = s.Cart.SetQuantity(cmd.ProductID, cmd.Quantity)
		if item, ok := s.Cart.Item(cmd.ProductID); ok {
			qty = item.Quantity
		}
		return nil
	})
	if err != nil || !applied {
		metrics.RecordIntent("SetCartQuantity", false)
		return false, err
	}

	h.emit(ctx, cmd.SessionID, cart.AggregateType, cart.EventQuantityChanged,
		cart.CartQuantityChanged{SessionID: cmd.SessionID, ProductID: cmd.ProductID, Quantity: qty, ChangedAt: h.now()})
	metrics.RecordIntent("SetCartQuantity", true)
	return true, nil
}

// RemoveFromCart deletes a line; an unknown id is a no-op
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (bool, error) {
	var applied bool
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		applied = s.Cart.Remove(cmd.ProductID)
		return nil
	})
	if err != nil || !applied {
		metrics.RecordIntent("RemoveFromCart", false)
		return false, err
	}

	h.emit(ctx, cmd.SessionID, cart.AggregateType, cart.EventItemRemoved,
		cart.ItemRemovedFromCart{SessionID: cmd.SessionID, ProductID: cmd.ProductID, RemovedAt: h.now()})
	metrics.RecordIntent("RemoveFromCart", true)
	return true, nil
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		s.Cart.Clear()
		return nil
	})
	if err != nil {
		return err
	}

	h.emit(ctx, cmd.SessionID, cart.AggregateType, cart.EventCartCleared,
		cart.CartCleared{SessionID: cmd.SessionID, ClearedAt: h.now()})
	metrics.RecordIntent("ClearCart", true)
	return nil
}

// ============================================
// Checkout
// ============================================

// Checkout turns the session's cart into an order. Precondition failures
// come back as the Result outcome.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) (checkout.Result, error) {
	var res checkout.Result
	var email string
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		var err error
		res, err = h.engine.Checkout.Checkout(checkout.Request{
			Gate:            &s.Gate,
			Cart:            s.Cart,
			ShippingAddress: cmd.ShippingAddress,
		})
		if u, ok := s.Gate.User(); ok {
			email = u.Email
		}
		return err
	})
	if err != nil {
		log.Printf("[Command] Checkout failed for session %s: %v", cmd.SessionID, err)
		return res, err
	}

	if res.Outcome != checkout.OutcomeCompleted {
		metrics.RecordCheckout(string(res.Outcome), 0)
		return res, nil
	}

	placed := *res.Order
	total, _ := placed.Total.Float64()
	metrics.RecordCheckout(string(res.Outcome), total)

	if h.orders != nil {
		if err := h.orders.SaveOrder(ctx, placed); err != nil {
			log.Printf("[Command] Failed to persist order %s: %v", placed.ID, err)
		}
	}
	if h.engine.Checkout.Policy() == checkout.StockEnforce {
		quantities := make(map[string]int, len(placed.Items))
		for _, item := range placed.Items {
			quantities[item.ID] += item.Quantity
			if p, ok := h.engine.Catalog.Get(item.ID); ok {
				h.persistProduct(ctx, p)
			}
		}
		h.emit(ctx, catalogAggregateID, catalog.AggregateType, catalog.EventStockConsumed,
			catalog.StockConsumed{OrderID: placed.ID, Quantities: quantities, ConsumedAt: placed.CreatedAt})
	}
	h.emit(ctx, placed.ID, order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{
		OrderID:         placed.ID,
		UserID:          placed.UserID,
		Email:           email,
		Items:           placed.Items,
		Total:           placed.Total,
		ShippingAddress: placed.ShippingAddress,
		PlacedAt:        placed.CreatedAt,
	})
	h.emit(ctx, cmd.SessionID, cart.AggregateType, cart.EventCartCleared,
		cart.CartCleared{SessionID: cmd.SessionID, ClearedAt: placed.CreatedAt})
	return res, nil
}

// ============================================
// Session
// ============================================

// Login accepts any email and assigns the matching storefront identity
func (h *Handler) Login(ctx context.Context, cmd Login) (identity.User, error) {
	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		metrics.RecordIntent("Login", false)
		return identity.User{}, ErrInvalidEmail
	}
	u := identity.FromEmail(email, h.adminEmail)
	if name := strings.TrimSpace(cmd.Name); name != "" {
		u.Name = name
	}

	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		s.Gate.Login(u)
		u, _ = s.Gate.User()
		return nil
	})
	if err != nil {
		return identity.User{}, err
	}

	log.WithFields(log.Fields{"session_id": cmd.SessionID, "user_id": u.ID, "role": u.Role}).Info("[Command] User logged in")
	h.emit(ctx, cmd.SessionID, identity.AggregateType, identity.EventLoggedIn,
		identity.UserLoggedIn{SessionID: cmd.SessionID, UserID: u.ID, Email: u.Email, Role: u.Role, LoggedAt: h.now()})
	metrics.RecordIntent("Login", true)
	return u, nil
}

// Logout clears the identity; logging out twice is a no-op
func (h *Handler) Logout(ctx context.Context, cmd Logout) error {
	var prev identity.User
	var was bool
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		prev, was = s.Gate.User()
		s.Gate.Logout()
		return nil
	})
	if err != nil || !was {
		return err
	}

	h.emit(ctx, cmd.SessionID, identity.AggregateType, identity.EventLoggedOut,
		identity.UserLoggedOut{SessionID: cmd.SessionID, UserID: prev.ID, LoggedAt: h.now()})
	metrics.RecordIntent("Logout", true)
	return nil
}

// UpdateProfile merges name and email into the current user
func (h *Handler) UpdateProfile(ctx context.Context, cmd UpdateProfile) (identity.User, bool, error) {
	var u identity.User
	var applied bool
	err := h.engine.Do(cmd.SessionID, func(s *engine.Session) error {
		applied = s.Gate.UpdateProfile(identity.ProfileUpdate{Email: cmd.Email, Name: cmd.Name})
		u, _ = s.Gate.User()
		return nil
	})
	if err != nil || !applied {
		metrics.RecordIntent("UpdateProfile", false)
		return identity.User{}, false, err
	}

	h.emit(ctx, cmd.SessionID, identity.AggregateType, identity.EventProfileUpdated,
		identity.UserProfileUpdated{SessionID: cmd.SessionID, UserID: u.ID, Name: u.Name, Email: u.Email, UpdatedAt: h.now()})
	metrics.RecordIntent("UpdateProfile", true)
	return u, true, nil
}

// ============================================
// Orders
// ============================================

// SetOrderStatus moves an order to status; an unknown id is a no-op
func (h *Handler) SetOrderStatus(ctx context.Context, cmd SetOrderStatus) (order.Order, bool, error) {
	if !cmd.Status.IsValid() {
		metrics.RecordIntent("SetOrderStatus", false)
		return order.Order{}, false, fmt.Errorf("%w: %q", order.ErrInvalidStatus, cmd.Status)
	}
	o, ok := h.engine.Orders.SetStatus(cmd.OrderID, cmd.Status)
	if !ok {
		metrics.RecordIntent("SetOrderStatus", false)
		return order.Order{}, false, nil
	}

	if h.orders != nil {
		if err := h.orders.UpdateStatus(ctx, o.ID, o.Status, o.UpdatedAt); err != nil {
			log.Printf("[Command] Failed to persist status of order %s: %v", o.ID, err)
		}
	}
	h.emit(ctx, o.ID, order.AggregateType, order.EventOrderStatusChanged,
		order.OrderStatusChanged{OrderID: o.ID, Status: o.Status, ChangedAt: o.UpdatedAt})
	metrics.RecordIntent("SetOrderStatus", true)
	return o, true, nil
}

// IngestOrders replaces the order collection with externally sourced orders
func (h *Handler) IngestOrders(ctx context.Context, cmd IngestOrders) {
	h.engine.Orders.Ingest(cmd.Orders)
	h.emit(ctx, ordersAggregateID, order.AggregateType, order.EventOrdersIngested,
		order.OrdersIngested{Count: len(cmd.Orders), IngestedAt: h.now()})
	metrics.RecordIntent("IngestOrders", true)
}

// emit appends an event. The engine state is already updated, so failures
// are logged and counted only.
func (h *Handler) emit(ctx context.Context, aggregateID, aggregateType, eventType string, data any) {
	if h.events == nil {
		return
	}
	if _, err := h.events.Append(ctx, aggregateID, aggregateType, eventType, data); err != nil {
		metrics.RecordEventFailure()
		log.WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event_type":   eventType,
			"error":        err,
		}).Warn("[Command] Failed to append event")
	}
}

func (h *Handler) persistProduct(ctx context.Context, p catalog.Product) {
	if h.products == nil {
		return
	}
	if err := h.products.SaveProduct(ctx, p); err != nil {
		log.Printf("[Command] Failed to persist product %s: %v", p.ID, err)
	}
}
