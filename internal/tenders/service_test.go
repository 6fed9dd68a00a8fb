package tenders

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegisterAndGet(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	submission := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	err := svc.Register(ctx, Tender{
		ID:              "T-1",
		Name:            "إنشاء مبنى إداري",
		ReferenceNumber: "260139001",
		Agency:          "وزارة المالية",
		SubmissionDate:  &submission,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Get(ctx, "T-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ReferenceNumber != "260139001" {
		t.Fatalf("reference = %q", got.ReferenceNumber)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at must be stamped")
	}
}

func TestRegisterRefreshKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Register(ctx, Tender{ID: "T-1", Name: "old name"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	first, _ := svc.Get(ctx, "T-1")

	if err := svc.Register(ctx, Tender{ID: "T-1", Name: "new name"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	second, _ := svc.Get(ctx, "T-1")

	if second.Name != "new name" {
		t.Fatalf("name = %q", second.Name)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("re-register must not reset created_at")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Register(context.Background(), Tender{ID: "  "}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"T-a", "T-b", "T-c"} {
		err := repo.Upsert(ctx, Tender{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	list, err := svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "T-c" || list[1].ID != "T-b" {
		t.Fatalf("order = %s, %s", list[0].ID, list[1].ID)
	}
}

func TestRemove(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if err := svc.Register(ctx, Tender{ID: "T-1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Remove(ctx, "T-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Get(ctx, "T-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after remove: %v, want ErrNotFound", err)
	}

	if err := svc.Remove(ctx, "T-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove: %v, want ErrNotFound", err)
	}
}

func TestMarkDownloaded(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if err := svc.Register(ctx, Tender{ID: "T-1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.MarkDownloaded(ctx, "T-1"); err != nil {
		t.Fatalf("mark downloaded: %v", err)
	}
	got, _ := svc.Get(ctx, "T-1")
	if got.DownloadedAt == nil {
		t.Fatal("downloaded_at not set")
	}
}
