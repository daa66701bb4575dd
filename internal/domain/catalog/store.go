package catalog

import (
	"fmt"
	"sync"
)

// Store owns the shared product collection. Writers build a new slice and
// swap it in under the write lock, so a reader holding a snapshot never
// observes a half-applied mutation.
type Store struct {
	mu         sync.RWMutex
	products   []Product
	categories []string
}

// NewStore creates a catalog store that knows the given categories.
func NewStore(categories ...string) *Store {
	s := &Store{}
	for _, c := range categories {
		s.categories = appendCategory(s.categories, c)
	}
	return s
}

// Ingest replaces the full product collection. Categories carried by the
// ingested products become known.
func (s *Store) Ingest(products []Product) {
	next := make([]Product, 0, len(products))
	for _, p := range products {
		next = append(next, p.Sanitize().Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cats := append([]string(nil), s.categories...)
	for _, p := range next {
		cats = appendCategory(cats, p.Category)
	}
	s.products = next
	s.categories = cats
}

// Upsert replaces the product with the same id in place or appends it.
func (s *Store) Upsert(p Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	p = p.Sanitize().Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !contains(s.categories, p.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}

	next := make([]Product, len(s.products), len(s.products)+1)
	copy(next, s.products)
	if i := indexOf(next, p.ID); i >= 0 {
		next[i] = p
	} else {
		next = append(next, p)
	}
	s.products = next
	return nil
}

// Remove deletes the product with the given id. It reports whether a
// product was removed; an unknown id is not an error.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.products, id)
	if i < 0 {
		return false
	}
	next := make([]Product, 0, len(s.products)-1)
	next = append(next, s.products[:i]...)
	next = append(next, s.products[i+1:]...)
	s.products = next
	return true
}

// AddReview appends a review to a product. The review rating is clamped to 1..5.
func (s *Store) AddReview(productID string, r Review) (Review, error) {
	r.Rating = ClampReviewRating(r.Rating)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.products, productID)
	if i < 0 {
		return Review{}, ErrProductNotFound
	}
	next := make([]Product, len(s.products))
	copy(next, s.products)
	p := next[i].Clone()
	p.Reviews = append(p.Reviews, r)
	next[i] = p
	s.products = next
	return r, nil
}

// ConsumeStock decrements stock for every product in quantities, or for
// none of them if any product is missing or short.
func (s *Store) ConsumeStock(quantities map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, qty := range quantities {
		i := indexOf(s.products, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if s.products[i].Stock < qty {
			return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficient, id, s.products[i].Stock, qty)
		}
	}

	next := make([]Product, len(s.products))
	copy(next, s.products)
	for id, qty := range quantities {
		i := indexOf(next, id)
		next[i].Stock -= qty
	}
	s.products = next
	return nil
}

// Get returns a copy of the product with the given id.
func (s *Store) Get(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.products, id)
	if i < 0 {
		return Product{}, false
	}
	return s.products[i].Clone(), true
}

// Products returns a copy of the full collection in insertion order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	snapshot := s.products
	s.mu.RUnlock()

	out := make([]Product, len(snapshot))
	for i, p := range snapshot {
		out[i] = p.Clone()
	}
	return out
}

// Derive applies the criteria to the current collection.
func (s *Store) Derive(c Criteria) []Product {
	s.mu.RLock()
	snapshot := s.products
	s.mu.RUnlock()
	return Derive(snapshot, c)
}

// Categories returns the known categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

// IsKnownCategory reports whether c is "all" or a known category.
func (s *Store) IsKnownCategory(c string) bool {
	if c == AllCategories {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.categories, c)
}

// LowStock returns products whose stock is below threshold.
func (s *Store) LowStock(threshold int) []Product {
	s.mu.RLock()
	snapshot := s.products
	s.mu.RUnlock()

	var out []Product
	for _, p := range snapshot {
		if p.Stock < threshold {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func indexOf(ps []Product, id string) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func appendCategory(list []string, c string) []string {
	if c == "" || c == AllCategories || contains(list, c) {
		return list
	}
	return append(list, c)
}
