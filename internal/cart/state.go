package cart

import (
	"github.com/fjod/papapizza/internal/domain"
	"github.com/shopspring/decimal"
)

// State is an immutable snapshot of the cart. Commands never modify a State
// in place; they return a new one.
type State struct {
	items []domain.LineItem
}

func Empty() State {
	return State{}
}

// Items returns the line items in insertion order. The slice is a copy.
func (s State) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s State) Len() int {
	return len(s.items)
}

func (s State) IsEmpty() bool {
	return len(s.items) == 0
}

func (s State) Find(id domain.ProductID) (domain.LineItem, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return domain.LineItem{}, false
}

func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s State) TotalQuantity() int {
	var n int
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// DraftItems projects the cart into the {id, quantity} pairs of an order.
func (s State) DraftItems() []domain.OrderDraftItem {
	out := make([]domain.OrderDraftItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, domain.OrderDraftItem{ID: item.ID, Quantity: item.Quantity})
	}
	return out
}

func (s State) index(id domain.ProductID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) with(items []domain.LineItem) State {
	if len(items) == 0 {
		return State{}
	}
	return State{items: items}
}
