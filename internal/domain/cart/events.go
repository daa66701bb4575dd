package cart

import "time"

const (
	EventItemAdded       = "ItemAddedToCart"
	EventQuantityChanged = "CartQuantityChanged"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventCartCleared     = "CartCleared"
)

type ItemAddedToCart struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type CartQuantityChanged struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	ChangedAt time.Time `json:"changed_at"`
}

type ItemRemovedFromCart struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type CartCleared struct {
	SessionID string    `json:"session_id"`
	ClearedAt time.Time `json:"cleared_at"`
}
