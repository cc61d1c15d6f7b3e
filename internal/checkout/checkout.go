package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/papapizza/internal/cart"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	ErrAddressRequired = errors.New("delivery address is required")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Submitter sends a finished draft to the vendor.
type Submitter interface {
	Submit(ctx context.Context, draft domain.OrderDraft) (domain.OrderConfirmation, error)
}

// Form is what the customer types on the checkout screen.
type Form struct {
	Name    string
	Phone   string
	Address string
	Comment string
}

type Service struct {
	cart     *cart.Store
	orders   Submitter
	validate *validator.Validate
	log      *slog.Logger
}

func NewService(store *cart.Store, orders Submitter, log *slog.Logger) *Service {
	return &Service{
		cart:     store,
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Checkout turns the current cart into an order. The ordered quantities leave
// the cart only when the vendor confirms the order; on any error the cart is
// left as it was. Items added while the order was in flight stay.
func (s *Service) Checkout(ctx context.Context, form Form) (domain.OrderConfirmation, error) {
	address := strings.TrimSpace(form.Address)
	if address == "" {
		return domain.OrderConfirmation{}, ErrAddressRequired
	}

	snapshot := s.cart.Snapshot()
	if snapshot.IsEmpty() {
		return domain.OrderConfirmation{}, ErrEmptyCart
	}

	draft := domain.OrderDraft{
		Name:    strings.TrimSpace(form.Name),
		Phone:   strings.TrimSpace(form.Phone),
		Address: address,
		Comment: strings.TrimSpace(form.Comment),
		Items:   snapshot.DraftItems(),
	}
	if err := s.validate.Struct(draft); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("invalid order: %w", err)
	}

	conf, err := s.orders.Submit(ctx, draft)
	if err != nil {
		s.log.WarnContext(ctx, "checkout failed", slog.Int("lines", len(draft.Items)), slog.Any("err", err))
		return conf, err
	}
	if !conf.Succeeded() {
		return conf, fmt.Errorf("order not confirmed: %q", conf.Message)
	}

	s.cart.RemoveOrdered(draft.Items)
	s.log.InfoContext(ctx, "checkout complete",
		slog.Int64("order_id", conf.OrderID),
		slog.String("total", snapshot.TotalPrice().String()),
	)
	return conf, nil
}
