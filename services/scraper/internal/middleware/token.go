// Package middleware holds the request gates that sit in front of the
// scrape handlers: shared-secret token authentication and admission control.
package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Exempt paths never require a token, regardless of configuration.
const (
	rootPath   = "/"
	healthPath = "/health"
)

const apiPrefix = "/api/"

// TokenGate authenticates requests under the API prefix against a shared
// secret carried in headerName. Decisions per request:
//
//   - "/" and "/health" pass unconditionally, as does everything when no
//     token is configured;
//   - paths outside the API prefix also pass (default-allow, so routes
//     added later are not accidentally locked out);
//   - API paths are rejected with 401 when the header is absent or
//     whitespace ("missing") or not byte-equal to the secret ("invalid").
//
// The comparison is ordinal and case-sensitive, with no trimming of the
// presented value. The token value itself is never logged.
func TokenGate(token, headerName string, log *zap.Logger) func(next http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || exempt(r.URL.Path) || !strings.HasPrefix(r.URL.Path, apiPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get(headerName)
			if strings.TrimSpace(presented) == "" {
				log.Warn("token rejected",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("reason", "missing"))
				reject(w, "missing token")
				return
			}
			if presented != token {
				log.Warn("token rejected",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("reason", "invalid"))
				reject(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func exempt(path string) bool {
	return path == rootPath || path == healthPath
}

func reject(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(body))
}
