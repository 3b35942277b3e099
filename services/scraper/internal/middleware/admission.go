package middleware

import (
	"net/http"

	"github.com/example/metadata-bridge/internal/platform/api"
	"github.com/example/metadata-bridge/internal/platform/httpserver"
)

// Admission caps in-flight requests with a counting semaphore. Requests
// over the limit are answered 503 immediately rather than queued, so a
// slow upstream cannot pile up goroutines here.
func Admission(limit int) func(next http.Handler) http.Handler {
	if limit <= 0 {
		limit = 10
	}
	sem := make(chan struct{}, limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				next.ServeHTTP(w, r)
			default:
				rid := httpserver.RequestIDFromContext(r.Context())
				api.Unavailable(w, "OVERLOADED", "too many concurrent requests", rid)
			}
		})
	}
}
