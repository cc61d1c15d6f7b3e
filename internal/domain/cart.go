package domain

import "github.com/shopspring/decimal"

// LineItem is one product in the cart. Display fields are copied from the
// catalog when the product is added and are not refreshed afterwards.
type LineItem struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func NewLineItem(p Product, quantity int) LineItem {
	return LineItem{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		Quantity:    quantity,
	}
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
