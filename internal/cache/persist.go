package cache

import (
	"context"
	"io"
	"strings"

	"tender-backend/internal/shared/storage/object"
)

const persistPrefix = "cache/"

// ObjectPersister stores cache entries as JSON objects in the object store,
// under cache/<category>/<key>.json. With the local store that lands in the
// data directory next to the tender attachments; with S3 the entries share
// the reports bucket.
type ObjectPersister struct {
	store object.ObjectStore
}

// NewObjectPersister wraps an object store as a cache persister.
func NewObjectPersister(store object.ObjectStore) *ObjectPersister {
	return &ObjectPersister{store: store}
}

func persistKey(category, key string) string {
	return persistPrefix + category + "/" + key + ".json"
}

// Load reads one persisted entry. Any failure is treated as a miss; the
// caller recomputes and overwrites.
func (p *ObjectPersister) Load(ctx context.Context, category, key string) ([]byte, bool) {
	rc, err := p.store.Open(ctx, persistKey(category, key))
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, 50<<20))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Save writes one entry durably.
func (p *ObjectPersister) Save(ctx context.Context, category, key string, data []byte) error {
	_, err := p.store.SaveWithKey(ctx, persistKey(category, key), "application/json", strings.NewReader(string(data)))
	return err
}

// Delete removes one persisted entry.
func (p *ObjectPersister) Delete(ctx context.Context, category, key string) error {
	return p.store.Delete(ctx, persistKey(category, key))
}

// List enumerates all persisted entries.
func (p *ObjectPersister) List(ctx context.Context) ([]PersistedEntry, error) {
	keys, err := p.store.List(ctx, persistPrefix)
	if err != nil {
		return nil, err
	}

	var entries []PersistedEntry
	for _, storageKey := range keys {
		rel := strings.TrimPrefix(storageKey, persistPrefix)
		category, key, found := strings.Cut(rel, "/")
		if !found || !strings.HasSuffix(key, ".json") {
			continue
		}
		entries = append(entries, PersistedEntry{
			Category: category,
			Key:      strings.TrimSuffix(key, ".json"),
		})
	}
	return entries, nil
}

var _ Persister = (*ObjectPersister)(nil)
