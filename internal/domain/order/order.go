package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must have at least one item")
	ErrInvalidStatus = errors.New("invalid order status")
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

type ShippingAddress struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// DefaultAddress is the placeholder address used when the shopper gives none.
func DefaultAddress(name string) ShippingAddress {
	return ShippingAddress{
		Name:       name,
		Address:    "123 Main St",
		City:       "City",
		PostalCode: "12345",
		Country:    "Country",
	}
}

func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []cart.Item     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (o Order) Clone() Order {
	c := o
	c.Items = make([]cart.Item, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

// NewID returns a time-ordered unique order id.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate order id: %w", err)
	}
	return id.String(), nil
}

// FromCart builds a pending order from a snapshot of the cart's lines and total.
func FromCart(id, userID string, c *cart.Cart, addr ShippingAddress, now time.Time) (Order, error) {
	if c.IsEmpty() {
		return Order{}, ErrEmptyOrder
	}
	return Order{
		ID:              id,
		UserID:          userID,
		Items:           c.Items(),
		Total:           c.Total(),
		Status:          StatusPending,
		ShippingAddress: addr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
