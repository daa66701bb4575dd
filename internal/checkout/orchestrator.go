// Package checkout turns a logged-in shopper's cart into an order.
package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/domain/order"
	log "github.com/sirupsen/logrus"
)

// ResumePath is where a shopper returns after logging in to finish checkout.
const ResumePath = "/cart"

// State is where a checkout attempt ended. A failure after the order id is
// drawn reports StatePlacing.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitingAuth State = "awaiting_auth"
	StatePlacing      State = "placing"
	StateCompleted    State = "completed"
)

type Outcome string

const (
	OutcomeCompleted         Outcome = "completed"
	OutcomeNeedsAuth         Outcome = "needs_auth"
	OutcomeEmptyCart         Outcome = "empty_cart"
	OutcomeInsufficientStock Outcome = "insufficient_stock"
)

// StockPolicy decides whether checkout consumes product stock.
type StockPolicy string

const (
	// StockIgnore leaves stock untouched, as the storefront always has.
	StockIgnore StockPolicy = "ignore"
	// StockEnforce rejects a checkout whose quantities exceed stock and
	// decrements stock together with order creation.
	StockEnforce StockPolicy = "enforce"
)

var ErrInvalidStockPolicy = errors.New("invalid stock policy")

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch StockPolicy(s) {
	case StockIgnore, StockEnforce:
		return StockPolicy(s), nil
	case "":
		return StockIgnore, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStockPolicy, s)
}

type Request struct {
	Gate            *identity.Gate
	Cart            *cart.Cart
	ShippingAddress order.ShippingAddress
}

type Result struct {
	Outcome  Outcome      `json:"outcome"`
	State    State        `json:"state"`
	OrderID  string       `json:"order_id,omitempty"`
	Order    *order.Order `json:"order,omitempty"`
	ResumeAt string       `json:"resume_at,omitempty"`
	Detail   string       `json:"detail,omitempty"`
}

type Orchestrator struct {
	orders  *order.Store
	catalog *catalog.Store
	policy  StockPolicy
	now     func() time.Time
	newID   func() (string, error)
}

func NewOrchestrator(orders *order.Store, products *catalog.Store, policy StockPolicy) *Orchestrator {
	if policy == "" {
		policy = StockIgnore
	}
	return &Orchestrator{
		orders:  orders,
		catalog: products,
		policy:  policy,
		now:     time.Now,
		newID:   order.NewID,
	}
}

func (o *Orchestrator) Policy() StockPolicy { return o.policy }

// Checkout runs one checkout attempt. The caller must serialize access to
// req.Gate and req.Cart. Either the order is recorded and the cart cleared,
// or neither happens; precondition failures are reported in the Result, and
// the error is reserved for id generation failures.
func (o *Orchestrator) Checkout(req Request) (Result, error) {
	user, ok := req.Gate.User()
	if !ok {
		return Result{Outcome: OutcomeNeedsAuth, State: StateAwaitingAuth, ResumeAt: ResumePath}, nil
	}
	if req.Cart.IsEmpty() {
		return Result{Outcome: OutcomeEmptyCart, State: StateIdle}, nil
	}

	id, err := o.newID()
	if err != nil {
		return Result{State: StatePlacing}, err
	}
	addr := req.ShippingAddress
	if addr.IsZero() {
		addr = order.DefaultAddress(user.Name)
	}
	placed, err := order.FromCart(id, user.ID, req.Cart, addr, o.now())
	if err != nil {
		return Result{Outcome: OutcomeEmptyCart, State: StateIdle}, nil
	}

	if o.policy == StockEnforce {
		if err := o.catalog.ConsumeStock(req.Cart.Quantities()); err != nil {
			log.WithFields(log.Fields{"user_id": user.ID, "error": err}).Info("[Checkout] Rejected for stock")
			return Result{Outcome: OutcomeInsufficientStock, State: StatePlacing, Detail: err.Error()}, nil
		}
	}

	o.orders.Record(placed)
	req.Cart.Clear()

	log.WithFields(log.Fields{
		"order_id": placed.ID,
		"user_id":  user.ID,
		"total":    placed.Total.StringFixed(2),
		"items":    len(placed.Items),
	}).Info("[Checkout] Order placed")

	return Result{Outcome: OutcomeCompleted, State: StateCompleted, OrderID: placed.ID, Order: &placed}, nil
}
