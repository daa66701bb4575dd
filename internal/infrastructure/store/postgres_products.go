package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ProductRepository persists catalog products
type ProductRepository interface {
	LoadProducts(ctx context.Context) ([]catalog.Product, error)
	SaveProduct(ctx context.Context, p catalog.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// PostgresProductRepository keeps the catalog in a products table
type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// LoadProducts returns every stored product in insertion order
func (r *PostgresProductRepository) LoadProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, price, image, category, stock, rating, reviews
		 FROM products
		 ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		var price, rating string
		var reviews []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Image, &p.Category, &p.Stock, &rating, &reviews); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %s has invalid price %q: %w", p.ID, price, err)
		}
		if p.Rating, err = decimal.NewFromString(rating); err != nil {
			return nil, fmt.Errorf("product %s has invalid rating %q: %w", p.ID, rating, err)
		}
		if len(reviews) > 0 {
			if err := json.Unmarshal(reviews, &p.Reviews); err != nil {
				return nil, fmt.Errorf("product %s has invalid reviews: %w", p.ID, err)
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SaveProduct inserts or replaces a product
func (r *PostgresProductRepository) SaveProduct(ctx context.Context, p catalog.Product) error {
	reviews, err := json.Marshal(p.Reviews)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, image, category, stock, rating, reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			category = EXCLUDED.category,
			stock = EXCLUDED.stock,
			rating = EXCLUDED.rating,
			reviews = EXCLUDED.reviews`,
		p.ID, p.Name, p.Description, p.Price.String(), p.Image, p.Category, p.Stock, p.Rating.String(), reviews,
	)
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ID, err)
	}

	log.Printf("[PostgresProducts] Saved product %s", p.ID)
	return nil
}

// DeleteProduct removes a product; deleting a missing id is not an error
func (r *PostgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	log.Printf("[PostgresProducts] Deleted product %s", id)
	return nil
}
