package domain

import "github.com/shopspring/decimal"

// CartLine is one product in the cart. The product fields are copied in at the
// time of the first add, so the snapshot is self-contained.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
