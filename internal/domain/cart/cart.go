package cart

import (
	"github.com/example/ec-storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

const AggregateType = "Cart"

// Item is a cart line. Name, price, image and category are copied from the
// product when the line is created and never follow later catalog changes.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the lines of one shopper. Total and item count are recomputed
// after every mutation and cannot be set directly.
type Cart struct {
	items     []Item
	total     decimal.Decimal
	itemCount int
}

func New() *Cart {
	return &Cart{items: []Item{}}
}

// Add increments the line for p by qty, or appends a new line snapshotting p.
// A qty below 1 is treated as 1.
func (c *Cart) Add(p catalog.Product, qty int) Item {
	if qty < 1 {
		qty = 1
	}
	defer c.recalculate()

	if i := c.indexOf(p.ID); i >= 0 {
		c.items[i].Quantity += qty
		return c.items[i]
	}
	item := Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Quantity: qty,
	}
	c.items = append(c.items, item)
	return item
}

// SetQuantity sets the quantity of a line, clamping anything below 1 to 1.
// Removing a line requires Remove. Reports whether the line exists.
func (c *Cart) SetQuantity(id string, qty int) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	if qty < 1 {
		qty = 1
	}
	c.items[i].Quantity = qty
	c.recalculate()
	return true
}

// Remove deletes a line. Reports whether the line existed.
func (c *Cart) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	c.recalculate()
	return true
}

func (c *Cart) Clear() {
	c.items = []Item{}
	c.recalculate()
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Item(id string) (Item, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

func (c *Cart) Total() decimal.Decimal { return c.total }
func (c *Cart) ItemCount() int         { return c.itemCount }
func (c *Cart) IsEmpty() bool          { return len(c.items) == 0 }

// Quantities maps product id to quantity.
func (c *Cart) Quantities() map[string]int {
	q := make(map[string]int, len(c.items))
	for _, it := range c.items {
		q[it.ID] += it.Quantity
	}
	return q
}

func (c *Cart) recalculate() {
	total := decimal.Zero
	count := 0
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
		count += it.Quantity
	}
	c.total = total
	c.itemCount = count
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
