package cart

import (
	"log/slog"
	"sync"

	"github.com/fjod/papapizza/internal/domain"
	"github.com/shopspring/decimal"
)

// Store owns the current cart snapshot. Dispatch is serialised, so there is a
// single writer; readers get immutable snapshots and need no locking.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []func(State)
	log         *slog.Logger
}

func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{log: log.With(slog.String("component", "cart"))}
}

// Dispatch applies cmd to the current snapshot. On error the snapshot is left
// untouched and returned together with the error.
func (s *Store) Dispatch(cmd Command) (State, error) {
	s.mu.Lock()
	next, err := cmd.Apply(s.state)
	if err != nil {
		cur := s.state
		s.mu.Unlock()
		s.log.Debug("cart command rejected", slog.String("command", cmd.String()), slog.Any("err", err))
		return cur, err
	}
	s.state = next
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.log.Debug("cart command applied",
		slog.String("command", cmd.String()),
		slog.Int("lines", next.Len()),
		slog.Int("quantity", next.TotalQuantity()),
	)
	for _, fn := range subs {
		fn(next)
	}
	return next, nil
}

// Subscribe registers fn to be called with every new snapshot. Callbacks run
// outside the store lock, on the dispatching goroutine.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) AddItem(p domain.Product, quantity int) (State, error) {
	return s.Dispatch(AddItem{Product: p, Quantity: quantity})
}

func (s *Store) UpdateQuantity(id domain.ProductID, quantity int) (State, error) {
	return s.Dispatch(UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Store) RemoveItem(id domain.ProductID) State {
	st, _ := s.Dispatch(RemoveItem{ID: id})
	return st
}

func (s *Store) Clear() State {
	st, _ := s.Dispatch(Clear{})
	return st
}

func (s *Store) RemoveOrdered(items []domain.OrderDraftItem) State {
	st, _ := s.Dispatch(RemoveOrdered{Items: items})
	return st
}

func (s *Store) Items() []domain.LineItem {
	return s.Snapshot().Items()
}

func (s *Store) TotalPrice() decimal.Decimal {
	return s.Snapshot().TotalPrice()
}

func (s *Store) TotalQuantity() int {
	return s.Snapshot().TotalQuantity()
}
