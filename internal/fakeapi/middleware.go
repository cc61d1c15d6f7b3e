package fakeapi

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const clientIDKey ctxKey = iota

// BearerAuth resolves the Authorization header to a client id. Requests
// without a valid token pass through anonymous; RequireClient rejects them.
func BearerAuth(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok {
				if id, found := store.ClientByToken(strings.TrimSpace(token)); found {
					r = r.WithContext(context.WithValue(r.Context(), clientIDKey, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if clientIDFromContext(r.Context()) == 0 {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(clientIDKey).(int64); ok {
		return id
	}
	return 0
}
