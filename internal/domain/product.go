package domain

import "github.com/shopspring/decimal"

// Product is the catalog snapshot the cart and checkout consult. Price is
// derived from StartPrice and Discount by the catalog repository.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	StartPrice decimal.Decimal `json:"start_price"`
	Discount   int             `json:"discount"`
	Price      decimal.Decimal `json:"price"`
	Available  bool            `json:"available"`
	Quantity   int             `json:"quantity"`
}

// ProductShort is the denormalized slice of product data a session cart item
// carries, since session items have no relational join to re-fetch it.
type ProductShort struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

func (p *Product) Short() *ProductShort {
	return &ProductShort{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Available: p.Available,
	}
}
