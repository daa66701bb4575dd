package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const AggregateType = "Catalog"

var (
	ErrInvalidProduct  = errors.New("product id is required")
	ErrUnknownCategory = errors.New("unknown category")
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInsufficient    = errors.New("insufficient stock")
)

// MaxRating is the upper bound of a product's aggregate rating.
var MaxRating = decimal.NewFromInt(5)

type Review struct {
	ID      string `json:"id"`
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Rating      decimal.Decimal `json:"rating"`
	Reviews     []Review        `json:"reviews"`
}

// Clone returns a deep copy so callers never share the reviews slice with the store.
func (p Product) Clone() Product {
	c := p
	c.Reviews = make([]Review, len(p.Reviews))
	copy(c.Reviews, p.Reviews)
	return c
}

// Sanitize clamps numeric fields into their valid ranges.
func (p Product) Sanitize() Product {
	if p.Price.IsNegative() {
		p.Price = decimal.Zero
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	if p.Rating.IsNegative() {
		p.Rating = decimal.Zero
	}
	if p.Rating.GreaterThan(MaxRating) {
		p.Rating = MaxRating
	}
	p.Category = strings.TrimSpace(p.Category)
	return p
}

// ClampReviewRating forces a review rating into 1..5.
func ClampReviewRating(r int) int {
	switch {
	case r < 1:
		return 1
	case r > 5:
		return 5
	}
	return r
}
