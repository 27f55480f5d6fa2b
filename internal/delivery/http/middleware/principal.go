package middleware

import (
	"context"
	"net/http"
	"strings"
)

// PrincipalHeader carries the authenticated user ID set by the upstream gateway.
const PrincipalHeader = "X-User-ID"

type principalKey struct{}

// Principal stores the caller identity from PrincipalHeader in the request context.
// Requests without it pass through; use cases decide whether identity is required.
func Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(PrincipalHeader)); id != "" {
			r = r.WithContext(WithPrincipal(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, principalKey{}, id)
}

// PrincipalFrom returns the caller identity, or "" for anonymous requests.
func PrincipalFrom(ctx context.Context) string {
	id, _ := ctx.Value(principalKey{}).(string)
	return id
}
