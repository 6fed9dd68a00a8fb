package tenders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of TendersRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Tender
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Tender),
	}
}

// Upsert inserts or replaces a tender record.
func (r *MemoryRepo) Upsert(ctx context.Context, tender Tender) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[tender.ID]; ok {
		if tender.CreatedAt.IsZero() {
			tender.CreatedAt = existing.CreatedAt
		}
		if tender.DownloadedAt == nil {
			tender.DownloadedAt = existing.DownloadedAt
		}
	}
	if tender.CreatedAt.IsZero() {
		tender.CreatedAt = time.Now().UTC()
	}
	r.data[tender.ID] = tender
	return nil
}

// GetByID returns a tender by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Tender, error) {
	if err := ctx.Err(); err != nil {
		return Tender{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tender, ok := r.data[id]
	if !ok {
		return Tender{}, ErrNotFound
	}
	return tender, nil
}

// List returns tenders newest-first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Tender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	all := make([]Tender, 0, len(r.data))
	for _, tender := range r.data {
		all = append(all, tender)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Tender{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Delete removes a tender record.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// MarkDownloaded records when the tender's attachments were fetched.
func (r *MemoryRepo) MarkDownloaded(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tender, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	tender.DownloadedAt = &at
	r.data[id] = tender
	return nil
}

var _ TendersRepo = (*MemoryRepo)(nil)
