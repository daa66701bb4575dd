package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func newMock(t *testing.T) (*PostgresEventStore, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	pub := &recordingPublisher{}
	return NewPostgresEventStore(db, pub), mock, pub
}

// ============================================
// In-memory Event Store Tests
// ============================================

func TestEventStore_AppendVersionsPerAggregate(t *testing.T) {
	pub := &recordingPublisher{}
	es := NewEventStore(pub)
	ctx := context.Background()

	e1, err := es.Append(ctx, "cart-1", cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{ProductID: "1", Quantity: 1})
	require.NoError(t, err)
	e2, err := es.Append(ctx, "cart-1", cart.AggregateType, cart.EventCartCleared, cart.CartCleared{})
	require.NoError(t, err)
	e3, err := es.Append(ctx, "cart-2", cart.AggregateType, cart.EventCartCleared, cart.CartCleared{})
	require.NoError(t, err)

	assert.Equal(t, 1, e1.Version)
	assert.Equal(t, 2, e2.Version)
	assert.Equal(t, 1, e3.Version)
	assert.Len(t, es.GetEvents("cart-1"), 2)
	assert.Len(t, es.GetAllEvents(), 3)
	assert.Equal(t, []string{"cart-1", "cart-1", "cart-2"}, pub.keys)
}

func TestEventStore_DecodePayload(t *testing.T) {
	es := NewEventStore(nil)
	e, err := es.Append(context.Background(), "cart-1", cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{ProductID: "4", Quantity: 3})
	require.NoError(t, err)

	var payload cart.ItemAddedToCart
	require.NoError(t, e.Decode(&payload))
	assert.Equal(t, "4", payload.ProductID)
	assert.Equal(t, 3, payload.Quantity)
}

func TestEventStore_PublishFailureKeepsEvent(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	es := NewEventStore(pub)

	e, err := es.Append(context.Background(), "o-1", order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{OrderID: "o-1"})

	assert.Error(t, err)
	require.NotNil(t, e)
	assert.Len(t, es.GetAllEvents(), 1)
}

// ============================================
// Postgres Event Store Tests
// ============================================

func TestPostgresEventStore_Append(t *testing.T) {
	es, mock, pub := newMock(t)

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(version\\), 0\\) FROM events").
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))
	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	e, err := es.Append(context.Background(), "o-1", order.AggregateType, order.EventOrderStatusChanged, order.OrderStatusChanged{OrderID: "o-1", Status: order.StatusShipped})

	require.NoError(t, err)
	assert.Equal(t, 3, e.Version)
	assert.Equal(t, []string{"o-1"}, pub.keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEventStore_AppendInsertFails(t *testing.T) {
	es, mock, pub := newMock(t)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec("INSERT INTO events").
		WillReturnError(errors.New("disk full"))

	_, err := es.Append(context.Background(), "o-1", order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{})

	assert.Error(t, err)
	assert.Empty(t, pub.keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEventStore_GetEvents(t *testing.T) {
	es, mock, _ := newMock(t)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("FROM events\\s+WHERE aggregate_id = \\$1").
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "data", "version", "created_at"}).
			AddRow("e1", "o-1", "Order", "OrderPlaced", []byte(`{"order_id":"o-1"}`), 1, ts).
			AddRow("e2", "o-1", "Order", "OrderStatusChanged", []byte(`{"status":"shipped"}`), 2, ts))

	events := es.GetEvents("o-1")

	require.Len(t, events, 2)
	assert.Equal(t, "OrderStatusChanged", events[1].EventType)
	assert.JSONEq(t, `{"status":"shipped"}`, string(events[1].Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEventStore_QueryErrorReturnsNil(t *testing.T) {
	es, mock, _ := newMock(t)
	mock.ExpectQuery("FROM events").WillReturnError(errors.New("gone"))

	assert.Nil(t, es.GetAllEvents())
}

// ============================================
// Product Repository Tests
// ============================================

func TestPostgresProducts_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "image", "category", "stock", "rating", "reviews"}).
			AddRow("1", "Classic T-Shirt", "Cotton", "29.99", "/1.jpg", "clothes", 50, "4.5", []byte(`[{"id":"r1","user":"Ann","rating":5,"comment":"Great","date":"2026-01-01"}]`)).
			AddRow("2", "Mug", "", "15.99", "", "cups", 30, "0", []byte(`[]`)))

	products, err := repo.LoadProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("29.99")))
	assert.Equal(t, 50, products[0].Stock)
	require.Len(t, products[0].Reviews, 1)
	assert.Equal(t, "Ann", products[0].Reviews[0].User)
	assert.Empty(t, products[1].Reviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProducts_LoadRejectsBadPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "image", "category", "stock", "rating", "reviews"}).
			AddRow("1", "Shirt", "", "cheap", "", "clothes", 1, "0", []byte(`[]`)))

	_, err = NewPostgresProductRepository(db).LoadProducts(context.Background())

	assert.Error(t, err)
}

func TestPostgresProducts_SaveKeepsFullPrecision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	p := catalog.Product{ID: "8", Name: "Pinch", Price: decimal.RequireFromString("1.999"), Category: "spices", Rating: decimal.RequireFromString("4.125")}

	mock.ExpectExec("INSERT INTO products").
		WithArgs("8", "Pinch", "", "1.999", "", "spices", 0, "4.125", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewPostgresProductRepository(db).SaveProduct(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_MoneyColumnsAreUnscaled(t *testing.T) {
	for _, stmt := range schema {
		assert.NotContains(t, strings.ReplaceAll(stmt, " ", ""), "NUMERIC(", "decimal columns must not round")
	}
}

func TestPostgresProducts_SaveAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProductRepository(db)
	p := catalog.Product{ID: "7", Name: "Bowl", Price: decimal.RequireFromString("9.50"), Category: "cups", Stock: 3}

	mock.ExpectExec("INSERT INTO products (.+) ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs("7", "Bowl", "", "9.5", "", "cups", 3, "0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM products WHERE id = \\$1").
		WithArgs("7").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveProduct(context.Background(), p))
	require.NoError(t, repo.DeleteProduct(context.Background(), "7"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Order Repository Tests
// ============================================

func TestPostgresOrders_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "items", "total", "status", "shipping_address", "created_at", "updated_at"}).
			AddRow("o-1", "u-1", []byte(`[{"id":"1","name":"Shirt","price":"30","quantity":2}]`), "60", "shipped",
				[]byte(`{"name":"Ann","address":"1 Elm","city":"Oslo","postal_code":"0150","country":"NO"}`), ts, ts))

	orders, err := NewPostgresOrderRepository(db).LoadOrders(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.StatusShipped, orders[0].Status)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(60)))
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, "Oslo", orders[0].ShippingAddress.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_LoadRejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ts := time.Now()

	mock.ExpectQuery("FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "items", "total", "status", "shipping_address", "created_at", "updated_at"}).
			AddRow("o-1", "u-1", []byte(`[]`), "0", "lost", []byte(`{}`), ts, ts))

	_, err = NewPostgresOrderRepository(db).LoadOrders(context.Background())

	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestPostgresOrders_SaveAndUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresOrderRepository(db)
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	o := order.Order{ID: "o-1", UserID: "u-1", Total: decimal.NewFromInt(55), Status: order.StatusPending, CreatedAt: ts, UpdatedAt: ts}

	mock.ExpectExec("INSERT INTO orders").
		WithArgs("o-1", "u-1", sqlmock.AnyArg(), "55", "pending", sqlmock.AnyArg(), ts, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("o-1", "delivered", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveOrder(context.Background(), o))
	require.NoError(t, repo.UpdateStatus(context.Background(), "o-1", order.StatusDelivered, ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_UpdateStatusMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresOrderRepository(db).UpdateStatus(context.Background(), "nope", order.StatusShipped, time.Now())

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

// ============================================
// Schema Tests
// ============================================

func TestMigrate_AppliesEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
