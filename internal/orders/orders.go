package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/domain"
	"golang.org/x/sync/errgroup"
)

const detailsConcurrency = 4

var (
	ErrOrderRejected = errors.New("order rejected")
	ErrOrderNotFound = errors.New("order not found")
)

// RejectedError is a 2xx answer to create-order whose message is not
// "success".
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrOrderRejected.Error()
	}
	return fmt.Sprintf("%s: %s", ErrOrderRejected, e.Message)
}

func (e *RejectedError) Unwrap() error { return ErrOrderRejected }

type historyResponse struct {
	Orders []domain.Order `json:"orders"`
}

type Client struct {
	api api.Doer
	log *slog.Logger
}

func NewClient(doer api.Doer, log *slog.Logger) *Client {
	return &Client{api: doer, log: log}
}

func (c *Client) Submit(ctx context.Context, draft domain.OrderDraft) (domain.OrderConfirmation, error) {
	var conf domain.OrderConfirmation
	if err := c.api.Do(ctx, http.MethodPost, "create-order", draft, &conf); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("submit order: %w", err)
	}
	if !conf.Succeeded() {
		return conf, &RejectedError{Message: conf.Message}
	}
	c.log.InfoContext(ctx, "order submitted", slog.Int64("order_id", conf.OrderID))
	return conf, nil
}

func (c *Client) History(ctx context.Context, clientID int64) ([]domain.Order, error) {
	var resp historyResponse
	if err := c.api.Do(ctx, http.MethodGet, "clients/"+strconv.FormatInt(clientID, 10), nil, &resp); err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	if resp.Orders == nil {
		return []domain.Order{}, nil
	}
	return resp.Orders, nil
}

func (c *Client) Details(ctx context.Context, orderID int64) (domain.OrderDetails, error) {
	var d domain.OrderDetails
	if err := c.api.Do(ctx, http.MethodGet, "orders/"+strconv.FormatInt(orderID, 10), nil, &d); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return domain.OrderDetails{}, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
		}
		return domain.OrderDetails{}, fmt.Errorf("order %d: %w", orderID, err)
	}
	return d, nil
}

// HistoryDetails fetches the history and then the details of every order,
// a few at a time. The result keeps the history order.
func (c *Client) HistoryDetails(ctx context.Context, clientID int64) ([]domain.OrderDetails, error) {
	history, err := c.History(ctx, clientID)
	if err != nil {
		return nil, err
	}

	details := make([]domain.OrderDetails, len(history))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i, o := range history {
		i, o := i, o
		g.Go(func() error {
			d, err := c.Details(gctx, o.ID)
			if err != nil {
				return err
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}
