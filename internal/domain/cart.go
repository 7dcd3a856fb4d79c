package domain

import (
	"fmt"
	"time"
)

// Cart holds the ordered line items for one session. The service layer is
// the only mutator; everything else receives copies.
type Cart struct {
	UserID    string     `json:"user_id,omitempty"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LineItem is one product-variant row in the cart.
type LineItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Snapshot      ProductSnapshot `json:"snapshot"`
	Quantity      int             `json:"quantity"`
	SelectedColor string          `json:"selected_color,omitempty"`
	SelectedSize  string          `json:"selected_size,omitempty"`
	AddedAt       time.Time       `json:"added_at"`
}

// ProductSnapshot is the display data captured when an item is added.
// It is never re-fetched, so later catalog price changes do not affect
// the cart.
type ProductSnapshot struct {
	Title     string `json:"title"`
	UnitPrice Money  `json:"unit_price"`
	Image     string `json:"image,omitempty"`
}

// Product is the catalog shape the cart consumes. SalePrice is a display
// string ("$99.99") and must be parsed before any arithmetic.
type Product struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SalePrice string `json:"salePrice"`
	Image     string `json:"image,omitempty"`
}

// SameVariant reports whether the line item refers to the given
// (product, color, size) triple. The cart keeps at most one line item
// per triple.
func (li LineItem) SameVariant(productID, color, size string) bool {
	return li.ProductID == productID &&
		li.SelectedColor == color &&
		li.SelectedSize == size
}

// Subtotal is the snapshot unit price times the quantity.
func (li LineItem) Subtotal() Money {
	return li.Snapshot.UnitPrice.Mul(li.Quantity)
}

// NewLineItemID derives an id from the variant triple and the creation
// time, so repeated adds of the same variant at different times still get
// distinct ids.
func NewLineItemID(productID, color, size string, at time.Time) string {
	if color == "" {
		color = "default"
	}
	if size == "" {
		size = "default"
	}
	return fmt.Sprintf("%s-%s-%s-%d", productID, color, size, at.UnixNano())
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = append([]LineItem(nil), c.Items...)
	return &out
}

// Total sums subtotal over all line items.
func (c *Cart) Total() Money {
	total := Money{Currency: USD}
	for _, li := range c.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// ItemCount sums quantities, not distinct line items.
func (c *Cart) ItemCount() int {
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}
