package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/metadata-bridge/services/scraper/internal/cache"
)

func TestPurgeCache(t *testing.T) {
	st, err := cache.NewStore("", "", time.Minute, false, nil, "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	if err := st.Set(ctx, cache.Key("hanime", "1"), map[string]string{"Title": "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	h := NewAdminHandler(st, nil, "", zap.NewNop())
	rec := httptest.NewRecorder()
	h.PurgeCache(rec, httptest.NewRequest(http.MethodPost, "/admin/cache/purge", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var dest map[string]string
	hit, err := st.Get(ctx, cache.Key("hanime", "1"), &dest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("entry survived purge")
	}
}
