package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-identity item collection. A persisted cart always carries a
// UserID; a session cart never does, its identity is the session it lives in.
type Cart struct {
	UserID  *int64     `json:"user_id,omitempty"`
	Created time.Time  `json:"created"`
	Items   []CartItem `json:"cart_items"`
}

// CartItem snapshots the product price at add time. CartID is only set for
// persisted items; Product is only set for session items.
type CartItem struct {
	ProductID int64           `json:"product_id"`
	CartID    *int64          `json:"cart_id,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Product   *ProductShort   `json:"product,omitempty"`
}

// Item returns the cart item for productID, or nil.
func (c *Cart) Item(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
