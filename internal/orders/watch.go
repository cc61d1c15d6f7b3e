package orders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/domain"
)

const DefaultWatchInterval = 5 * time.Second

// Watcher polls one order until it reaches a terminal status.
type Watcher struct {
	client   *Client
	interval time.Duration
	log      *slog.Logger
}

func NewWatcher(client *Client, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &Watcher{client: client, interval: interval, log: client.log}
}

// Run calls onChange with the first snapshot and then with every snapshot
// whose status differs from the previous one. It returns the last snapshot
// once the order is completed, or the context error. A failed poll is
// logged and retried on the next tick; client errors (not found,
// unauthorized, forbidden and other non-retryable 4xx) end the watch.
func (w *Watcher) Run(ctx context.Context, orderID int64, onChange func(domain.OrderDetails)) (domain.OrderDetails, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		last domain.OrderDetails
		seen bool
	)
	for {
		d, err := w.client.Details(ctx, orderID)
		switch {
		case err == nil:
			if !seen || d.Status != last.Status {
				onChange(d)
			}
			last, seen = d, true
			if d.Status.IsTerminal() {
				return d, nil
			}
		case ctx.Err() != nil:
			return last, ctx.Err()
		case isFinal(err):
			return last, err
		default:
			w.log.WarnContext(ctx, "order poll failed", slog.Int64("order_id", orderID), slog.Any("err", err))
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

func isFinal(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || api.IsClientError(err)
}
