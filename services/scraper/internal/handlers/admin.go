package handlers

import (
	"net/http"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/metadata-bridge/internal/platform/api"
	"github.com/example/metadata-bridge/internal/platform/httpserver"
	"github.com/example/metadata-bridge/services/scraper/internal/cache"
)

// AdminHandler exposes maintenance operations behind the admin JWT surface.
type AdminHandler struct {
	Cache             cache.Store
	NATS              *nats.Conn
	InvalidateSubject string
	Log               *zap.Logger
}

func NewAdminHandler(st cache.Store, nc *nats.Conn, invalidateSubject string, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{Cache: st, NATS: nc, InvalidateSubject: invalidateSubject, Log: log}
}

// PurgeCache handles POST /admin/cache/purge. It clears the local backend and
// broadcasts an invalidation so memory-backed replicas drop their copies too.
func (h *AdminHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	if err := h.Cache.Purge(r.Context()); err != nil {
		h.Log.Error("cache purge failed", zap.Error(err))
		api.Internal(w, rid)
		return
	}
	if h.NATS != nil && h.InvalidateSubject != "" {
		if err := h.NATS.Publish(h.InvalidateSubject, []byte("ALL")); err != nil {
			h.Log.Warn("cache invalidation broadcast failed", zap.Error(err))
		}
	}
	h.Log.Info("cache purged", zap.String("request_id", rid))
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}
