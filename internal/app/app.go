package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/auth"
	"github.com/fjod/papapizza/internal/cache"
	"github.com/fjod/papapizza/internal/cart"
	"github.com/fjod/papapizza/internal/catalog"
	"github.com/fjod/papapizza/internal/checkout"
	"github.com/fjod/papapizza/internal/config"
	"github.com/fjod/papapizza/internal/orders"
	"github.com/fjod/papapizza/pkg/circuitbreaker"
	"github.com/fjod/papapizza/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// App holds the storefront's clients and the cart store they share.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Cart     *cart.Store
	Catalog  *catalog.Client
	Orders   *orders.Client
	Auth     *auth.Client
	Checkout *checkout.Service

	redis *redis.Client
}

// New wires everything from cfg. logOut receives log output; nil means
// stderr.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	log := logger.New(logger.Options{
		Service: "papapizza-storefront",
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  logOut,
	})

	a := &App{Config: cfg, Log: log}
	if cfg.Session.Store == "redis" || cfg.Cache.Kind == "redis" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			_ = a.redis.Close()
			return nil, fmt.Errorf("connect to redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	tokens := a.tokenStore()
	doer, err := api.New(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(auth.StoreTokenSource(tokens)),
		api.WithBreaker(circuitbreaker.Config{
			Name:             "vendor-api",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}),
		api.WithLogger(log),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Cart = cart.NewStore(log)
	a.Catalog = catalog.NewClient(doer, a.menuCache(), cfg.API.Vendor, log)
	a.Orders = orders.NewClient(doer, log)
	a.Auth = auth.NewClient(doer, tokens, log)
	a.Checkout = checkout.NewService(a.Cart, a.Orders, log)
	return a, nil
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("close redis", slog.Any("err", err))
		}
	}
}

func (a *App) tokenStore() auth.TokenStore {
	switch a.Config.Session.Store {
	case "redis":
		return auth.NewRedisStore(a.redis, a.Config.Session.Profile, a.Config.Session.TTL)
	case "memory":
		return auth.NewMemoryStore()
	default:
		return auth.NewFileStore(a.Config.Session.File)
	}
}

func (a *App) menuCache() cache.MenuCache {
	switch a.Config.Cache.Kind {
	case "redis":
		return cache.NewRedisCache(a.redis, a.Config.Cache.TTL)
	case "memory":
		return cache.NewMemoryCache(a.Config.Cache.TTL)
	default:
		return cache.Noop{}
	}
}
