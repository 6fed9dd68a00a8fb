package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"tender-backend/internal/shared/metrics"
	"tender-backend/internal/shared/telemetry"
	"tender-backend/internal/shared/util"
)

// Categories of reusable artifacts. Documents are extracted attachment text,
// searches are market-research results, analyses are full AI evaluations.
const (
	CategoryDocument = "document"
	CategorySearch   = "search"
	CategoryAnalysis = "analysis"
)

// Stats reports per-category entry counts and aggregate size.
type Stats struct {
	DocumentsCached  int     `json:"documents_cached"`
	SearchesCached   int     `json:"searches_cached"`
	AnalysesCached   int     `json:"analyses_cached"`
	TotalCacheSizeMB float64 `json:"total_cache_size_mb"`
}

// Persister stores entries durably so hits survive process restarts.
type Persister interface {
	Load(ctx context.Context, category, key string) ([]byte, bool)
	Save(ctx context.Context, category, key string, data []byte) error
	Delete(ctx context.Context, category, key string) error
	List(ctx context.Context) ([]PersistedEntry, error)
}

// PersistedEntry identifies one durably stored cache entry.
type PersistedEntry struct {
	Category string
	Key      string
}

type entry struct {
	data []byte
}

type inflight struct {
	done chan struct{}
	data []byte
	err  error
}

// Store is a content-addressed cache shared across concurrent analyses.
// Keys are deterministic fingerprints of the compute inputs, so identical
// work hits the cache and skips the paid call entirely. Entries are held
// as JSON: the in-memory map is the hot layer and the persister is the
// durable one, so a restarted process resolves the same keys without
// re-incurring any paid calls.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]*inflight
	persist  Persister
}

// NewStore constructs a Store. persist may be nil for a memory-only cache.
func NewStore(persist Persister) *Store {
	return &Store{
		entries:  make(map[string]entry),
		inflight: make(map[string]*inflight),
		persist:  persist,
	}
}

// Key builds a deterministic cache key from the compute inputs.
func Key(parts ...string) string {
	return util.Fingerprint(parts...)
}

// Warm loads every persisted entry into memory. Called once at startup so
// stats and clear operate on the full surviving set.
func (s *Store) Warm(ctx context.Context) (int, error) {
	if s.persist == nil {
		return 0, nil
	}
	persisted, err := s.persist.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list persisted cache entries: %w", err)
	}

	loaded := 0
	for _, pe := range persisted {
		data, ok := s.persist.Load(ctx, pe.Category, pe.Key)
		if !ok {
			continue
		}
		s.mu.Lock()
		full := pe.Category + ":" + pe.Key
		if _, exists := s.entries[full]; !exists {
			s.entries[full] = entry{data: data}
			loaded++
		}
		s.mu.Unlock()
	}
	return loaded, nil
}

// GetOrCompute decodes the cached payload for (category, key) into out, or
// invokes compute exactly once to fill it. Concurrent callers for the same
// key share one compute invocation; a failed compute stores nothing. The
// compute result must round-trip through JSON, since a later hit may be
// served from the persister after a restart.
func (s *Store) GetOrCompute(ctx context.Context, category, key string, out any, compute func(ctx context.Context) (any, error)) error {
	full := category + ":" + key

	for {
		s.mu.Lock()
		if e, ok := s.entries[full]; ok {
			s.mu.Unlock()
			metrics.IncCacheHit()
			telemetry.Info("cache.hit", map[string]any{"category": category, "key": key})
			return decode(e.data, out)
		}
		if fl, ok := s.inflight[full]; ok {
			s.mu.Unlock()
			select {
			case <-fl.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if fl.err == nil {
				metrics.IncCacheHit()
				return decode(fl.data, out)
			}
			// The other caller failed; retry with our own compute.
			continue
		}
		fl := &inflight{done: make(chan struct{})}
		s.inflight[full] = fl
		s.mu.Unlock()

		data, err := s.fill(ctx, category, key, compute)

		s.mu.Lock()
		delete(s.inflight, full)
		if err == nil {
			s.entries[full] = entry{data: data}
		}
		s.mu.Unlock()

		fl.data = data
		fl.err = err
		close(fl.done)

		if err != nil {
			return err
		}
		return decode(data, out)
	}
}

// fill resolves a miss: first from the persister (a pre-restart compute),
// then by running compute and persisting its result.
func (s *Store) fill(ctx context.Context, category, key string, compute func(ctx context.Context) (any, error)) ([]byte, error) {
	if s.persist != nil {
		if data, ok := s.persist.Load(ctx, category, key); ok {
			metrics.IncCacheHit()
			telemetry.Info("cache.hit", map[string]any{"category": category, "key": key, "source": "persisted"})
			return data, nil
		}
	}

	metrics.IncCacheMiss()
	payload, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode cache payload: %w", err)
	}

	if s.persist != nil {
		if err := s.persist.Save(ctx, category, key, data); err != nil {
			telemetry.Warn("cachePersistFailed", map[string]any{
				"category": category,
				"key":      key,
				"error":    err.Error(),
			})
		}
	}
	return data, nil
}

func decode(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode cache payload: %w", err)
	}
	return nil
}

// Get returns the raw cached entry without computing.
func (s *Store) Get(category, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[category+":"+key]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Stats reports counts per category and total size in megabytes.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	var totalBytes int64
	for full, e := range s.entries {
		totalBytes += int64(len(e.data))
		switch categoryOf(full) {
		case CategoryDocument:
			stats.DocumentsCached++
		case CategorySearch:
			stats.SearchesCached++
		case CategoryAnalysis:
			stats.AnalysesCached++
		}
	}
	stats.TotalCacheSizeMB = math.Round(float64(totalBytes)/(1024*1024)*100) / 100
	return stats
}

// Clear removes entries for the given category, or everything for "all",
// from memory and from the persister. Unknown categories remove nothing
// and do not error.
func (s *Store) Clear(ctx context.Context, category string) int {
	s.mu.Lock()
	var cleared []string
	for full := range s.entries {
		if category == "all" || categoryOf(full) == category {
			delete(s.entries, full)
			cleared = append(cleared, full)
		}
	}
	s.mu.Unlock()

	if s.persist != nil {
		for _, full := range cleared {
			cat := categoryOf(full)
			if err := s.persist.Delete(ctx, cat, full[len(cat)+1:]); err != nil {
				telemetry.Warn("cacheDeleteFailed", map[string]any{
					"entry": full,
					"error": err.Error(),
				})
			}
		}
	}

	telemetry.Info("cache.cleared", map[string]any{"category": category, "removed": len(cleared)})
	return len(cleared)
}

func categoryOf(full string) string {
	for i := 0; i < len(full); i++ {
		if full[i] == ':' {
			return full[:i]
		}
	}
	return full
}
