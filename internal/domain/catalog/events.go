package catalog

import "time"

const (
	EventProductsIngested = "ProductsIngested"
	EventProductUpserted  = "ProductUpserted"
	EventProductRemoved   = "ProductRemoved"
	EventReviewAdded      = "ReviewAdded"
	EventStockConsumed    = "StockConsumed"
)

type ProductsIngested struct {
	Count      int       `json:"count"`
	IngestedAt time.Time `json:"ingested_at"`
}

type ProductUpserted struct {
	Product   Product   `json:"product"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductRemoved struct {
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type ReviewAdded struct {
	ProductID string    `json:"product_id"`
	Review    Review    `json:"review"`
	AddedAt   time.Time `json:"added_at"`
}

// StockConsumed is emitted when checkout decrements stock.
type StockConsumed struct {
	OrderID    string         `json:"order_id"`
	Quantities map[string]int `json:"quantities"`
	ConsumedAt time.Time      `json:"consumed_at"`
}
