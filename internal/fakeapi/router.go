package fakeapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterOptions struct {
	RequestTimeout time.Duration
	AccessLog      bool
}

// NewRouter mounts the vendor API under /api.
func NewRouter(store *Store, log *slog.Logger, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	h := NewHandler(store, log)

	r := chi.NewRouter()
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(BearerAuth(store))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/pizzas", h.ListProducts)
		r.Get("/pizzas/{id}", h.GetProduct)
		r.Post("/create-order", h.CreateOrder)
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(RequireClient)
			r.Get("/clients/{id}", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Post("/orders/{id}/advance", h.AdvanceOrder)
		})
	})

	return otelhttp.NewHandler(r, "papapizza-mockapi")
}
