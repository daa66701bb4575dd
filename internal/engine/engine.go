// Package engine partitions per-shopper state by session and runs intents
// against it one at a time.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/checkout"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/domain/order"
	log "github.com/sirupsen/logrus"
)

var ErrNoSession = errors.New("session id is required")

// Session is the state owned by one shopper: identity, cart and catalog criteria.
type Session struct {
	ID       string
	Gate     identity.Gate
	Cart     *cart.Cart
	Criteria catalog.Criteria

	mu       sync.Mutex
	lastSeen time.Time
	evicted  bool
}

// Engine holds the shared catalog and order stores plus one Session per shopper.
type Engine struct {
	Catalog  *catalog.Store
	Orders   *order.Store
	Checkout *checkout.Orchestrator

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func New(products *catalog.Store, orders *order.Store, orch *checkout.Orchestrator) *Engine {
	return &Engine{
		Catalog:  products,
		Orders:   orders,
		Checkout: orch,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Do runs fn against the session, creating it on first use. Calls for the
// same session are serialized; fn must not call Do for the same id.
func (e *Engine) Do(sessionID string, fn func(s *Session) error) error {
	if sessionID == "" {
		return ErrNoSession
	}
	for {
		s := e.session(sessionID)
		s.mu.Lock()
		if s.evicted {
			s.mu.Unlock()
			continue
		}
		s.lastSeen = e.now()
		err := fn(s)
		s.mu.Unlock()
		return err
	}
}

// Sweep evicts sessions idle for longer than maxIdle and returns how many went.
// Sessions busy running an intent are skipped.
func (e *Engine) Sweep(maxIdle time.Duration) int {
	cutoff := e.now().Add(-maxIdle)

	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := 0
	for id, s := range e.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if s.lastSeen.Before(cutoff) {
			s.evicted = true
			delete(e.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	if evicted > 0 {
		log.WithFields(log.Fields{"evicted": evicted, "remaining": len(e.sessions)}).Info("[Engine] Swept idle sessions")
	}
	return evicted
}

// Len returns the number of sessions held.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

// Role returns the role of the session's user, or false when the session is
// unknown or logged out.
func (e *Engine) Role(sessionID string) (identity.Role, bool) {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	e.mu.Unlock()
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evicted {
		return "", false
	}
	u, ok := s.Gate.User()
	return u.Role, ok
}

func (e *Engine) session(id string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		s = &Session{
			ID:       id,
			Cart:     cart.New(),
			Criteria: catalog.DefaultCriteria(),
			lastSeen: e.now(),
		}
		e.sessions[id] = s
	}
	return s
}
