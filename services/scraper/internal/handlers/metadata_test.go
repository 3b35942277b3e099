package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/metadata-bridge/catalog"
	"github.com/example/metadata-bridge/internal/platform/api"
	"github.com/example/metadata-bridge/services/scraper/internal/cache"
	"github.com/example/metadata-bridge/services/scraper/internal/upstream"
)

type fakeScraper struct {
	detail     *upstream.DetailResponse
	detailErr  error
	search     *upstream.SearchResponse
	searchErr  error
	detailHits int
	searchHits int
}

func (f *fakeScraper) Detail(_ context.Context, _, _ string) (*upstream.DetailResponse, error) {
	f.detailHits++
	return f.detail, f.detailErr
}

func (f *fakeScraper) Search(_ context.Context, _, _ string) (*upstream.SearchResponse, error) {
	f.searchHits++
	return f.search, f.searchErr
}

func newTestRouter(t *testing.T, sc upstream.Scraper) (*chi.Mux, cache.Store) {
	t.Helper()
	st, err := cache.NewStore("", "", time.Minute, false, nil, "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	h := NewMetadataHandler(sc, st, nil, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/{catalog}/search", h.Search)
	r.Get("/api/{catalog}/{id}", h.GetByID)
	return r, st
}

func detailResponse(title string) *upstream.DetailResponse {
	d := &upstream.DetailResponse{Status: 200}
	d.Data.ID = "64351"
	d.Data.Title = title
	d.Data.Year = 2021
	return d
}

func TestGetByIDSuccess(t *testing.T) {
	fs := &fakeScraper{detail: detailResponse("Some Work")}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/64351", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var md catalog.Metadata
	if err := json.Unmarshal(rec.Body.Bytes(), &md); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if md.Title != "Some Work" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.Year == nil || *md.Year != 2021 {
		t.Errorf("Year = %v", md.Year)
	}
	if md.SourceURL == nil || *md.SourceURL != "https://hanime1.me/watch?v=64351" {
		t.Errorf("SourceURL = %v", md.SourceURL)
	}
}

func TestGetByIDUnknownCatalog(t *testing.T) {
	fs := &fakeScraper{detail: detailResponse("x")}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope/1", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if fs.detailHits != 0 {
		t.Errorf("upstream was called for unknown catalog")
	}
	var er api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "UNKNOWN_CATALOG" {
		t.Errorf("code = %q", er.Error.Code)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	fs := &fakeScraper{detailErr: upstream.ErrNotFound}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/404404", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var er api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q", er.Error.Code)
	}
}

func TestGetByIDUpstreamDown(t *testing.T) {
	fs := &fakeScraper{detailErr: errors.New("connection refused")}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/1", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var er api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "UPSTREAM_UNAVAILABLE" {
		t.Errorf("code = %q", er.Error.Code)
	}
}

func TestGetByIDTitlelessRecord(t *testing.T) {
	fs := &fakeScraper{detail: detailResponse("   ")}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/1", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var er api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "UPSTREAM_INVALID" {
		t.Errorf("code = %q", er.Error.Code)
	}
}

func TestGetByIDCachesResult(t *testing.T) {
	fs := &fakeScraper{detail: detailResponse("Cached Work")}
	r, _ := newTestRouter(t, fs)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/7", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if fs.detailHits != 1 {
		t.Errorf("upstream hits = %d, want 1", fs.detailHits)
	}
}

func TestGetByIDNotFoundIsNotCached(t *testing.T) {
	fs := &fakeScraper{detailErr: upstream.ErrNotFound}
	r, st := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/9", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	var md catalog.Metadata
	hit, err := st.Get(context.Background(), cache.Key("hanime", "9"), &md)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("absence was cached")
	}
}

func TestSearchSuccess(t *testing.T) {
	sr := &upstream.SearchResponse{Status: 200}
	sr.Data.Results = []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Year     int    `json:"year"`
		CoverURL string `json:"coverUrl"`
	}{
		{ID: "1", Title: "First", Year: 2020},
		{ID: "", Title: "No ID"},
	}
	fs := &fakeScraper{search: sr}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/search?q=first", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp catalog.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "First" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	fs := &fakeScraper{}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hanime/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if fs.searchHits != 0 {
		t.Errorf("upstream was called without a query")
	}
}

func TestSearchUpstreamDown(t *testing.T) {
	fs := &fakeScraper{searchErr: errors.New("boom")}
	r, _ := newTestRouter(t, fs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dlsite/search?q=x", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}
