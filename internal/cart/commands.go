package cart

import (
	"fmt"

	"github.com/fjod/papapizza/internal/domain"
)

// Command is a discrete cart mutation.
type Command interface {
	Apply(State) (State, error)
	fmt.Stringer
}

// AddItem appends the product, or increases the quantity of the line that
// already holds the same product id.
type AddItem struct {
	Product  domain.Product
	Quantity int
}

func (c AddItem) Apply(s State) (State, error) {
	if c.Product.ID == "" {
		return s, ErrMissingID
	}
	if c.Quantity < 1 {
		return s, fmt.Errorf("add %s x%d: %w", c.Product.ID, c.Quantity, ErrInvalidQuantity)
	}

	items := s.Items()
	if i := s.index(c.Product.ID); i >= 0 {
		items[i].Quantity += c.Quantity
		return s.with(items), nil
	}
	return s.with(append(items, domain.NewLineItem(c.Product, c.Quantity))), nil
}

func (c AddItem) String() string {
	return fmt.Sprintf("add %s x%d", c.Product.ID, c.Quantity)
}

// UpdateQuantity sets the quantity of an existing line. Zero removes the
// line; an unknown id is a no-op.
type UpdateQuantity struct {
	ID       domain.ProductID
	Quantity int
}

func (c UpdateQuantity) Apply(s State) (State, error) {
	if c.Quantity < 0 {
		return s, fmt.Errorf("update %s to %d: %w", c.ID, c.Quantity, ErrInvalidQuantity)
	}
	if c.Quantity == 0 {
		return RemoveItem{ID: c.ID}.Apply(s)
	}

	i := s.index(c.ID)
	if i < 0 {
		return s, nil
	}
	items := s.Items()
	items[i].Quantity = c.Quantity
	return s.with(items), nil
}

func (c UpdateQuantity) String() string {
	return fmt.Sprintf("update %s to %d", c.ID, c.Quantity)
}

type RemoveItem struct {
	ID domain.ProductID
}

func (c RemoveItem) Apply(s State) (State, error) {
	i := s.index(c.ID)
	if i < 0 {
		return s, nil
	}
	items := make([]domain.LineItem, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	return s.with(items), nil
}

func (c RemoveItem) String() string {
	return fmt.Sprintf("remove %s", c.ID)
}

type Clear struct{}

func (Clear) Apply(State) (State, error) {
	return Empty(), nil
}

func (Clear) String() string {
	return "clear"
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines added or
// topped up after the order was drafted keep the difference.
type RemoveOrdered struct {
	Items []domain.OrderDraftItem
}

func (c RemoveOrdered) Apply(s State) (State, error) {
	ordered := make(map[domain.ProductID]int, len(c.Items))
	for _, it := range c.Items {
		ordered[it.ID] += it.Quantity
	}
	items := make([]domain.LineItem, 0, len(s.items))
	for _, it := range s.items {
		it.Quantity -= ordered[it.ID]
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	return s.with(items), nil
}

func (c RemoveOrdered) String() string {
	return fmt.Sprintf("remove %d ordered lines", len(c.Items))
}
