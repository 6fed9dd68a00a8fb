package classification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tender-backend/internal/session"
)

const relationsPage = `<div class="etd-block">
  <ul class="list-group">
    <li class="list-group-item">
      <div class="etd-item-title">مجال التصنيف</div>
      <div class="etd-item-info"> أعمال الإنشاءات </div>
    </li>
    <li class="list-group-item">
      <div class="etd-item-title">مجال التصنيف</div>
      <div class="etd-item-info">أعمال الكهرباء</div>
    </li>
    <li class="list-group-item">
      <div class="etd-item-title">الحزمة</div>
      <div class="etd-item-info">الحزمة الأولى</div>
    </li>
    <li class="list-group-item">
      <div class="etd-item-title">تاريخ النشر</div>
      <div class="etd-item-info">2025-03-01</div>
    </li>
  </ul>
</div>`

const notRequiredPage = `<ul>
  <li class="list-group-item">
    <div class="etd-item-title">مجال التصنيف</div>
    <div class="etd-item-info">غير مطلوب</div>
  </li>
</ul>`

func newTestClient(t *testing.T, upstream http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	sessions := session.NewStore(map[string]string{"MonafasatToken": "abc"})
	return NewClient(srv.URL, sessions), srv
}

func TestResolveParsesClassificationsAndBundles(t *testing.T) {
	var gotPath, gotQuery, gotCookie string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("tenderIdStr")
		if c, err := r.Cookie("MonafasatToken"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte(relationsPage))
	})

	result, err := client.Resolve(context.Background(), "T-100")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if gotPath != relationsPath {
		t.Fatalf("path = %q, want %q", gotPath, relationsPath)
	}
	if gotQuery != "T-100" {
		t.Fatalf("tenderIdStr = %q", gotQuery)
	}
	if gotCookie != "abc" {
		t.Fatalf("session cookie not forwarded, got %q", gotCookie)
	}

	if result.ItemID != "T-100" {
		t.Fatalf("item id = %q", result.ItemID)
	}
	want := "أعمال الإنشاءات, أعمال الكهرباء"
	if result.Label != want {
		t.Fatalf("label = %q, want %q", result.Label, want)
	}
	if !result.RequiresClassification {
		t.Fatal("expected requires_classification = true")
	}
	if len(result.Bundles) != 1 || result.Bundles[0] != "الحزمة الأولى" {
		t.Fatalf("bundles = %v", result.Bundles)
	}
}

func TestResolveNotRequired(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(notRequiredPage))
	})

	result, err := client.Resolve(context.Background(), "T-200")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.RequiresClassification {
		t.Fatal("explicit not-required label must map to requires_classification = false")
	}
	if result.Label != "غير مطلوب" {
		t.Fatalf("label = %q", result.Label)
	}
}

func TestResolveNoClassificationFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<ul><li class="list-group-item"><div class="etd-item-title">تاريخ</div><div class="etd-item-info">x</div></li></ul>`))
	})

	result, err := client.Resolve(context.Background(), "T-300")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.Label != LabelUnspecified {
		t.Fatalf("label = %q, want %q", result.Label, LabelUnspecified)
	}
	if result.RequiresClassification {
		t.Fatal("unspecified classification must not require pruning")
	}
	if len(result.Bundles) != 0 {
		t.Fatalf("bundles = %v", result.Bundles)
	}
}

func TestResolveNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.Resolve(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveUpstreamFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_ = srv

	_, err := client.Resolve(context.Background(), "T-400")
	if err == nil {
		t.Fatal("expected error")
	}
	if !isUpstreamUnavailable(err) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestResolveEmptyID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called for an empty id")
	})

	if _, err := client.Resolve(context.Background(), "  "); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
