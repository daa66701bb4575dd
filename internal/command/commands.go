package command

import (
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/order"
)

// Catalog Commands
type IngestProducts struct {
	Products []catalog.Product `json:"products"`
}

type UpsertProduct struct {
	Product catalog.Product `json:"product"`
}

type RemoveProduct struct {
	ProductID string `json:"product_id"`
}

type AddReview struct {
	SessionID string `json:"-"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Criteria Commands
type SetCategoryFilter struct {
	SessionID string `json:"-"`
	Category  string `json:"category"`
}

type SetSort struct {
	SessionID string         `json:"-"`
	SortBy    catalog.SortBy `json:"sort_by"`
}

type SetSearch struct {
	SessionID string `json:"-"`
	Query     string `json:"query"`
}

// Cart Commands
type AddToCart struct {
	SessionID string `json:"-"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetCartQuantity struct {
	SessionID string `json:"-"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	SessionID string `json:"-"`
	ProductID string `json:"product_id"`
}

type ClearCart struct {
	SessionID string `json:"-"`
}

// Checkout Commands
type Checkout struct {
	SessionID       string                `json:"-"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
}

// Session Commands
type Login struct {
	SessionID string `json:"-"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
}

type Logout struct {
	SessionID string `json:"-"`
}

type UpdateProfile struct {
	SessionID string  `json:"-"`
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
}

// Order Commands
type SetOrderStatus struct {
	OrderID string       `json:"order_id"`
	Status  order.Status `json:"status"`
}

type IngestOrders struct {
	Orders []order.Order `json:"orders"`
}
