package tenders

import (
	"context"
	"strings"
	"time"

	"tender-backend/internal/shared/metrics"
	"tender-backend/internal/shared/telemetry"
)

// Service contains business logic for tender records.
type Service struct {
	Repo TendersRepo
}

// NewService constructs a Service.
func NewService(repo TendersRepo) *Service {
	return &Service{Repo: repo}
}

// Register records a scraped tender, refreshing its fields if it already
// exists. Analysis starts call this so a job always has a backing record.
func (s *Service) Register(ctx context.Context, tender Tender) error {
	if strings.TrimSpace(tender.ID) == "" {
		return ErrNotFound
	}
	return s.Repo.Upsert(ctx, tender)
}

// Get returns one tender.
func (s *Service) Get(ctx context.Context, id string) (Tender, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns tenders newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Tender, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Remove deletes a tender. This is the delete side effect the bulk
// pruner drives, so it also feeds the pruned-tenders counter.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncTendersPruned()
	telemetry.Info("tenderDeleted", map[string]any{"tenderId": id})
	return nil
}

// MarkDownloaded stamps the attachment download time.
func (s *Service) MarkDownloaded(ctx context.Context, id string) error {
	return s.Repo.MarkDownloaded(ctx, id, time.Now().UTC())
}
