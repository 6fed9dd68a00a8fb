package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store).RegisterRoutes(r.Group("/api"))
	return r
}

func seedEntry(t *testing.T, store *Store, category, key string, payload any) {
	t.Helper()
	var out any
	err := store.GetOrCompute(context.Background(), category, key, &out, func(ctx context.Context) (any, error) {
		return payload, nil
	})
	if err != nil {
		t.Fatalf("seed %s/%s: %v", category, key, err)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	store := NewStore(nil)
	seedEntry(t, store, CategoryDocument, Key("tender-1", "documents"), "document text")
	seedEntry(t, store, CategorySearch, Key("tender-1", "market"), "search payload")
	seedEntry(t, store, CategoryAnalysis, Key("tender-1", "requirements"), "analysis payload")
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	stats, ok := payload["stats"].(map[string]any)
	if !ok {
		t.Fatalf("expected stats object, got %v", payload)
	}
	if got := stats["documents_cached"].(float64); got != 1 {
		t.Fatalf("expected 1 cached document, got %v", got)
	}
	if got := stats["searches_cached"].(float64); got != 1 {
		t.Fatalf("expected 1 cached search, got %v", got)
	}
	if got := stats["analyses_cached"].(float64); got != 1 {
		t.Fatalf("expected 1 cached analysis, got %v", got)
	}
}

func TestCacheClearEndpoint(t *testing.T) {
	store := NewStore(nil)
	seedEntry(t, store, CategoryDocument, Key("tender-1", "documents"), "document text")
	seedEntry(t, store, CategorySearch, Key("tender-1", "market"), "search payload")
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", strings.NewReader(`{"cache_type":"document"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := payload["removed"].(float64); got != 1 {
		t.Fatalf("expected 1 removed, got %v", got)
	}
	if _, ok := store.Get(CategorySearch, Key("tender-1", "market")); !ok {
		t.Fatalf("expected search entry untouched")
	}
}

func TestCacheClearRequiresType(t *testing.T) {
	store := NewStore(nil)
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
