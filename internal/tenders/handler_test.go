package tenders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func TestListTendersEndpoint(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	for _, td := range []Tender{
		{ID: "t-1", Name: "شبكة ألياف", Agency: "وزارة الاتصالات"},
		{ID: "t-2", Name: "بوابة خدمات", Agency: "وزارة التجارة"},
	} {
		if err := svc.Register(context.Background(), td); err != nil {
			t.Fatalf("register %s: %v", td.ID, err)
		}
	}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tenders", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := payload["count"].(float64); got != 2 {
		t.Fatalf("expected count 2, got %v", got)
	}
}

func TestDeleteTenderEndpoint(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Register(context.Background(), Tender{ID: "t-1", Name: "Test"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/tender/t-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if _, err := svc.Get(context.Background(), "t-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteTenderNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/tender/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["code"] != "not_found" {
		t.Fatalf("expected not_found, got %v", payload["code"])
	}
}
