package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/metadata-bridge/catalog"
	"github.com/example/metadata-bridge/internal/platform/analytics"
	"github.com/example/metadata-bridge/internal/platform/api"
	"github.com/example/metadata-bridge/internal/platform/httpserver"
	"github.com/example/metadata-bridge/services/scraper/internal/cache"
	"github.com/example/metadata-bridge/services/scraper/internal/upstream"
)

// MetadataHandler serves the per-catalog metadata and search endpoints.
type MetadataHandler struct {
	Scraper   upstream.Scraper
	Cache     cache.Store
	Analytics *analytics.Publisher
	Log       *zap.Logger
}

func NewMetadataHandler(sc upstream.Scraper, st cache.Store, pub *analytics.Publisher, log *zap.Logger) *MetadataHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MetadataHandler{Scraper: sc, Cache: st, Analytics: pub, Log: log}
}

// GetByID handles GET /api/{catalog}/{id}.
func (h *MetadataHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	cat, ok := catalog.ByKey(chi.URLParam(r, "catalog"))
	if !ok {
		api.NotFound(w, "UNKNOWN_CATALOG", "unknown catalog", rid)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		api.BadRequest(w, "MISSING_ID", "id is required", rid, nil)
		return
	}

	key := cache.Key(cat.Key, id)
	var md catalog.Metadata
	if hit, err := h.Cache.Get(r.Context(), key, &md); err != nil {
		h.Log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		h.Analytics.Publish(analytics.SubjectScrapeFetched, "scrape_fetched", cat.Key,
			map[string]any{"id": id, "cache_hit": true})
		api.WriteJSON(w, http.StatusOK, md)
		return
	}

	resp, err := h.Scraper.Detail(r.Context(), cat.Key, id)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			h.Analytics.Publish(analytics.SubjectScrapeMissed, "scrape_missed", cat.Key,
				map[string]any{"id": id})
			api.NotFound(w, "NOT_FOUND", "no entry for this id", rid)
			return
		}
		h.Log.Warn("upstream fetch failed",
			zap.String("catalog", cat.Key), zap.String("id", id), zap.Error(err))
		api.BadGateway(w, "UPSTREAM_UNAVAILABLE", "scrape upstream unavailable", rid)
		return
	}

	mapped, err := upstream.ToMetadata(cat, id, resp)
	if err != nil {
		h.Log.Warn("upstream record unusable",
			zap.String("catalog", cat.Key), zap.String("id", id), zap.Error(err))
		api.BadGateway(w, "UPSTREAM_INVALID", "scrape result is unusable", rid)
		return
	}

	if err := h.Cache.Set(r.Context(), key, mapped); err != nil {
		h.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	h.Analytics.Publish(analytics.SubjectScrapeFetched, "scrape_fetched", cat.Key,
		map[string]any{"id": id, "cache_hit": false})
	api.WriteJSON(w, http.StatusOK, mapped)
}

// Search handles GET /api/{catalog}/search?q=.
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())

	cat, ok := catalog.ByKey(chi.URLParam(r, "catalog"))
	if !ok {
		api.NotFound(w, "UNKNOWN_CATALOG", "unknown catalog", rid)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.BadRequest(w, "MISSING_QUERY", "q is required", rid, nil)
		return
	}

	resp, err := h.Scraper.Search(r.Context(), cat.Key, query)
	if err != nil {
		h.Log.Warn("upstream search failed",
			zap.String("catalog", cat.Key), zap.String("query", query), zap.Error(err))
		api.BadGateway(w, "UPSTREAM_UNAVAILABLE", "scrape upstream unavailable", rid)
		return
	}

	h.Analytics.Publish(analytics.SubjectScrapeSearched, "scrape_searched", cat.Key,
		map[string]any{"query": query})
	api.WriteJSON(w, http.StatusOK, catalog.SearchResponse{Results: upstream.ToSearchResults(resp)})
}
