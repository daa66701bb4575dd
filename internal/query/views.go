package query

import (
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// LowStockThreshold marks products the admin dashboard flags for restocking.
const LowStockThreshold = 20

// RecentOrdersLimit is how many orders the admin dashboard lists.
const RecentOrdersLimit = 5

// LowStockLimit caps the low-stock list, in catalog order.
const LowStockLimit = 5

type CatalogView struct {
	Products   []catalog.Product `json:"products"`
	Categories []string          `json:"categories"`
	Criteria   catalog.Criteria  `json:"criteria"`
}

type CartView struct {
	Items     []cart.Item `json:"items"`
	ItemCount int         `json:"item_count"`
	cart.Totals
}

type OrdersView struct {
	Orders []order.Order `json:"orders"`
}

type SessionView struct {
	User       *identity.User `json:"user"`
	IsLoggedIn bool           `json:"is_logged_in"`
}

type AdminStats struct {
	ProductCount int               `json:"product_count"`
	OrderCount   int               `json:"order_count"`
	Revenue      decimal.Decimal   `json:"revenue"`
	LowStock     []catalog.Product `json:"low_stock"`
	RecentOrders []order.Order     `json:"recent_orders"`
}
