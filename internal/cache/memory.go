package cache

import (
	"context"
	"time"

	"github.com/fjod/papapizza/internal/domain"
	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache is the process-local MenuCache used when no Redis is configured.
// A zero TTL keeps entries until they are deleted.
type MemoryCache struct {
	items *ttlcache.Cache[string, []domain.Product]
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCache{
		items: ttlcache.New[string, []domain.Product](
			ttlcache.WithTTL[string, []domain.Product](ttl),
			ttlcache.WithDisableTouchOnHit[string, []domain.Product](),
		),
	}
}

func (m *MemoryCache) Get(_ context.Context, vendor string) ([]domain.Product, error) {
	item := m.items.Get(vendor)
	if item == nil {
		return nil, ErrCacheMiss
	}
	menu := item.Value()
	out := make([]domain.Product, len(menu))
	copy(out, menu)
	return out, nil
}

func (m *MemoryCache) Set(_ context.Context, vendor string, menu []domain.Product) error {
	stored := make([]domain.Product, len(menu))
	copy(stored, menu)

	// Other vendors' stale menus go on every write; there is no janitor goroutine.
	m.items.DeleteExpired()
	m.items.Set(vendor, stored, ttlcache.DefaultTTL)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, vendor string) error {
	m.items.Delete(vendor)
	return nil
}

// Len reports the entries currently held, expired ones included until the
// next Set evicts them.
func (m *MemoryCache) Len() int {
	return m.items.Len()
}
