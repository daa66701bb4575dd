package order

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrdersIngested     = "OrdersIngested"
)

type OrderPlaced struct {
	OrderID         string          `json:"order_id"`
	UserID          string          `json:"user_id"`
	Email           string          `json:"email"`
	Items           []cart.Item     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PlacedAt        time.Time       `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type OrdersIngested struct {
	Count      int       `json:"count"`
	IngestedAt time.Time `json:"ingested_at"`
}
