package session

import (
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

func TestUpdateCookiesReplacesStore(t *testing.T) {
	store := NewStore(map[string]string{"old": "stale"})
	r := newTestRouter(store)

	body := `{"cookies":{".AspNet.Cookies":"abc123","TS01":"xyz"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/update-cookies", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	cookies := store.Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	for _, ck := range cookies {
		if ck.Name == "old" {
			t.Fatalf("expected old cookies replaced, still present")
		}
	}
	if store.UpdatedAt().IsZero() {
		t.Fatalf("expected updatedAt set")
	}
}

func TestUpdateCookiesRejectsEmptyBody(t *testing.T) {
	store := NewStore(nil)
	r := newTestRouter(store)

	for _, body := range []string{``, `{}`, `{"cookies":{}}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/update-cookies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.Code)
		}
	}
	if !store.Empty() {
		t.Fatalf("expected store to stay empty")
	}
}
