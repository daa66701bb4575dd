package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/checkout"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	products := catalog.NewStore(catalog.SeedCategories...)
	products.Ingest(catalog.SeedProducts())
	orders := order.NewStore()
	return New(products, orders, checkout.NewOrchestrator(orders, products, checkout.StockIgnore))
}

func TestEngine_Do_CreatesIsolatedSessions(t *testing.T) {
	e := newTestEngine()
	p, _ := e.Catalog.Get("1")

	require.NoError(t, e.Do("a", func(s *Session) error {
		s.Cart.Add(p, 2)
		s.Gate.Login(identity.User{ID: "u-a", Role: identity.RoleCustomer})
		return nil
	}))

	var items int
	var loggedIn bool
	var criteria catalog.Criteria
	require.NoError(t, e.Do("b", func(s *Session) error {
		items = s.Cart.ItemCount()
		loggedIn = s.Gate.IsLoggedIn()
		criteria = s.Criteria
		return nil
	}))

	assert.Equal(t, 0, items)
	assert.False(t, loggedIn)
	assert.Equal(t, 2, e.Len())
	assert.Equal(t, catalog.DefaultCriteria(), criteria)
}

func TestEngine_Do_RequiresID(t *testing.T) {
	e := newTestEngine()
	assert.ErrorIs(t, e.Do("", func(*Session) error { return nil }), ErrNoSession)
}

func TestEngine_Do_SerializesSession(t *testing.T) {
	e := newTestEngine()
	p, _ := e.Catalog.Get("2")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Do("shared", func(s *Session) error {
				s.Cart.Add(p, 1)
				return nil
			})
		}()
	}
	wg.Wait()

	_ = e.Do("shared", func(s *Session) error {
		assert.Equal(t, 50, s.Cart.ItemCount())
		return nil
	})
}

func TestEngine_Sweep(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	_ = e.Do("old", func(*Session) error { return nil })
	now = now.Add(3 * time.Hour)
	_ = e.Do("fresh", func(*Session) error { return nil })

	evicted := e.Sweep(2 * time.Hour)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, e.Len())
}

func TestEngine_Role(t *testing.T) {
	e := newTestEngine()
	_ = e.Do("guest", func(*Session) error { return nil })
	_ = e.Do("member", func(s *Session) error {
		s.Gate.Login(identity.User{ID: "2", Role: identity.RoleCustomer})
		return nil
	})

	_, ok := e.Role("guest")
	assert.False(t, ok)
	role, ok := e.Role("member")
	assert.True(t, ok)
	assert.Equal(t, identity.RoleCustomer, role)
}
