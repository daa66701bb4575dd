package order

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the append-only collection of placed orders shared by all sessions.
type Store struct {
	mu     sync.RWMutex
	orders []Order
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Record appends a fully-formed order. No validation happens here.
func (s *Store) Record(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o.Clone())
}

// Ingest replaces the whole order collection.
func (s *Store) Ingest(orders []Order) {
	next := make([]Order, len(orders))
	for i, o := range orders {
		next[i] = o.Clone()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = next
}

// SetStatus replaces the status of an order and refreshes UpdatedAt. It
// returns the updated order and whether it was found.
func (s *Store) SetStatus(id string, status Status) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			s.orders[i].UpdatedAt = s.now()
			return s.orders[i].Clone(), true
		}
	}
	return Order{}, false
}

func (s *Store) Get(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return Order{}, false
}

// ByUser returns the orders of a user in creation order.
func (s *Store) ByUser(userID string) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *Store) All() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Recent returns up to n orders, newest first.
func (s *Store) Recent(n int) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, n)
	for i := len(s.orders) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.orders[i].Clone())
	}
	return out
}

// Revenue sums the totals of all orders that were not cancelled.
func (s *Store) Revenue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, o := range s.orders {
		if o.Status != StatusCancelled {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
