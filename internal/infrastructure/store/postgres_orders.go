package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// OrderRepository persists placed orders
type OrderRepository interface {
	LoadOrders(ctx context.Context) ([]order.Order, error)
	SaveOrder(ctx context.Context, o order.Order) error
	UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) error
}

// PostgresOrderRepository keeps orders in an orders table
type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// LoadOrders returns stored orders oldest first
func (r *PostgresOrderRepository) LoadOrders(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, items, total, status, shipping_address, created_at, updated_at
		 FROM orders
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var o order.Order
		var items, addr []byte
		var total, status string
		if err := rows.Scan(&o.ID, &o.UserID, &items, &total, &status, &addr, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("order %s has invalid items: %w", o.ID, err)
		}
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("order %s has invalid address: %w", o.ID, err)
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("order %s has invalid total %q: %w", o.ID, total, err)
		}
		if o.Status, err = order.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SaveOrder inserts or replaces an order
func (r *PostgresOrderRepository) SaveOrder(ctx context.Context, o order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, items, total, status, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		o.ID, o.UserID, items, o.Total.String(), string(o.Status), addr, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", o.ID, err)
	}

	log.Printf("[PostgresOrders] Saved order %s", o.ID)
	return nil
}

// UpdateStatus changes the stored status of an order
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", order.ErrOrderNotFound, id)
	}
	return nil
}
