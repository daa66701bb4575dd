package query

import (
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/engine"
)

// Handler builds read views from the engine. Views are copies; callers may keep them.
type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Catalog derives the session's visible product list from its criteria
func (h *Handler) Catalog(sessionID string) (CatalogView, error) {
	var criteria catalog.Criteria
	err := h.engine.Do(sessionID, func(s *engine.Session) error {
		criteria = s.Criteria
		return nil
	})
	if err != nil {
		return CatalogView{}, err
	}
	return CatalogView{
		Products:   h.engine.Catalog.Derive(criteria),
		Categories: h.engine.Catalog.Categories(),
		Criteria:   criteria,
	}, nil
}

func (h *Handler) Product(id string) (catalog.Product, bool) {
	return h.engine.Catalog.Get(id)
}

func (h *Handler) Cart(sessionID string) (CartView, error) {
	var view CartView
	err := h.engine.Do(sessionID, func(s *engine.Session) error {
		view = CartView{
			Items:     s.Cart.Items(),
			ItemCount: s.Cart.ItemCount(),
			Totals:    s.Cart.Totals(),
		}
		return nil
	})
	return view, err
}

func (h *Handler) Session(sessionID string) (SessionView, error) {
	var view SessionView
	err := h.engine.Do(sessionID, func(s *engine.Session) error {
		if u, ok := s.Gate.User(); ok {
			view = SessionView{User: &u, IsLoggedIn: true}
		}
		return nil
	})
	return view, err
}

// Orders lists the session user's orders in creation order; empty when logged out
func (h *Handler) Orders(sessionID string) (OrdersView, error) {
	u, ok, err := h.user(sessionID)
	if err != nil || !ok {
		return OrdersView{Orders: []order.Order{}}, err
	}
	return OrdersView{Orders: h.engine.Orders.ByUser(u.ID)}, nil
}

// Order returns one order if it belongs to the session user or the user is an admin
func (h *Handler) Order(sessionID, orderID string) (order.Order, bool) {
	u, ok, err := h.user(sessionID)
	if err != nil || !ok {
		return order.Order{}, false
	}
	o, ok := h.engine.Orders.Get(orderID)
	if !ok || (o.UserID != u.ID && u.Role != identity.RoleAdmin) {
		return order.Order{}, false
	}
	return o, true
}

func (h *Handler) AllOrders() OrdersView {
	return OrdersView{Orders: h.engine.Orders.All()}
}

func (h *Handler) AdminStats() AdminStats {
	lowStock := h.engine.Catalog.LowStock(LowStockThreshold)
	if lowStock == nil {
		lowStock = []catalog.Product{}
	}
	if len(lowStock) > LowStockLimit {
		lowStock = lowStock[:LowStockLimit]
	}
	return AdminStats{
		ProductCount: h.engine.Catalog.Len(),
		OrderCount:   h.engine.Orders.Len(),
		Revenue:      h.engine.Orders.Revenue(),
		LowStock:     lowStock,
		RecentOrders: h.engine.Orders.Recent(RecentOrdersLimit),
	}
}

func (h *Handler) user(sessionID string) (identity.User, bool, error) {
	var u identity.User
	var ok bool
	err := h.engine.Do(sessionID, func(s *engine.Session) error {
		u, ok = s.Gate.User()
		return nil
	})
	return u, ok, err
}
