package cache

import (
	"context"
	"errors"

	"github.com/fjod/papapizza/internal/domain"
)

// MenuCache keeps the last fetched catalog, keyed by vendor.
type MenuCache interface {
	Get(ctx context.Context, vendor string) ([]domain.Product, error)
	Set(ctx context.Context, vendor string, menu []domain.Product) error
	Delete(ctx context.Context, vendor string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]domain.Product, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, string, []domain.Product) error   { return nil }
func (Noop) Delete(context.Context, string) error                  { return nil }
