package tenders

import (
	"context"
	"time"
)

// TendersRepo defines persistence operations for tenders.
type TendersRepo interface {
	Upsert(ctx context.Context, tender Tender) error
	GetByID(ctx context.Context, id string) (Tender, error)
	List(ctx context.Context, limit, offset int) ([]Tender, error)
	Delete(ctx context.Context, id string) error
	MarkDownloaded(ctx context.Context, id string, at time.Time) error
}
