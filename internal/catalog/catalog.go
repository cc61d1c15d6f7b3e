package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/cache"
	"github.com/fjod/papapizza/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

type Client struct {
	api    api.Doer
	cache  cache.MenuCache
	vendor string
	sfg    singleflight.Group // collapses concurrent menu misses
	log    *slog.Logger
}

func NewClient(doer api.Doer, menuCache cache.MenuCache, vendor string, log *slog.Logger) *Client {
	if menuCache == nil {
		menuCache = cache.Noop{}
	}
	return &Client{api: doer, cache: menuCache, vendor: vendor, log: log}
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	// The flight outlives any one caller; the transport timeout bounds it.
	flight := context.WithoutCancel(ctx)
	ch := c.sfg.DoChan(c.vendor, func() (interface{}, error) {
		menu, err := c.cache.Get(flight, c.vendor)
		if err == nil {
			return menu, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.WarnContext(flight, "menu cache get failed", slog.Any("err", err))
		}

		var products []domain.Product
		if err := c.api.Do(flight, http.MethodGet, "pizzas", nil, &products); err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		if products == nil {
			products = []domain.Product{}
		}

		go func() {
			if err := c.cache.Set(flight, c.vendor, products); err != nil {
				c.log.Warn("menu cache set failed", slog.Any("err", err))
			}
		}()
		return products, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	// Callers sharing a flight must not share a backing array.
	shared := res.Val.([]domain.Product)
	out := make([]domain.Product, len(shared))
	copy(out, shared)
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, ErrProductNotFound
	}
	var p domain.Product
	if err := c.api.Do(ctx, http.MethodGet, "pizzas/"+url.PathEscape(id.String()), nil, &p); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Invalidate drops the cached menu so the next ListProducts hits the API.
func (c *Client) Invalidate(ctx context.Context) error {
	if err := c.cache.Delete(ctx, c.vendor); err != nil {
		return fmt.Errorf("invalidate menu: %w", err)
	}
	return nil
}
