package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware puts a deadline on each request's context. The ceiling is
// generous because a streamed pipeline run holds its request open across every
// upstream call. Cancellation is cooperative: handlers and service clients see
// the expiry through ctx.Done() rather than being cut off.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
