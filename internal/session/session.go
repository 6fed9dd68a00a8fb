package session

import (
	"net/http"
	"sync"
	"time"
)

// Store holds the authentication cookies captured from the user's browser
// session on the upstream tender portal. The capture itself (extension,
// bookmarklet) is outside this service; we only receive and serve the values.
type Store struct {
	mu        sync.RWMutex
	cookies   map[string]string
	updatedAt time.Time
}

// NewStore constructs an empty cookie store, optionally seeded with values.
func NewStore(seed map[string]string) *Store {
	cookies := make(map[string]string, len(seed))
	for k, v := range seed {
		cookies[k] = v
	}
	s := &Store{cookies: cookies}
	if len(cookies) > 0 {
		s.updatedAt = time.Now().UTC()
	}
	return s
}

// Update replaces the stored cookie set.
func (s *Store) Update(cookies map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = make(map[string]string, len(cookies))
	for k, v := range cookies {
		s.cookies[k] = v
	}
	s.updatedAt = time.Now().UTC()
}

// Cookies returns the current cookie set as http.Cookie values.
func (s *Store) Cookies() []*http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*http.Cookie, 0, len(s.cookies))
	for name, value := range s.cookies {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out
}

// UpdatedAt reports when cookies were last replaced. Zero when never set.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Empty reports whether any cookies are held.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cookies) == 0
}
