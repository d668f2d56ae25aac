package session

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/invoice-generator/internal/invoice"
)

// Store keeps one invoice document per editing session. Implementations hand
// out copies, so callers may mutate what they load without synchronising.
type Store interface {
	Load(ctx context.Context, id string) (*invoice.Document, bool, error)
	Save(ctx context.Context, id string, doc *invoice.Document) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	doc       *invoice.Document
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Entries expire after TTL of inactivity.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu        sync.Mutex
	entries   map[string]memoryEntry
	lastSweep time.Time
}

// NewMemoryStore constructs a memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemoryStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

// Load returns a copy of the session document.
func (s *MemoryStore) Load(_ context.Context, id string) (*invoice.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	entry, ok := s.entries[id]
	if !ok || !now.Before(entry.expiresAt) {
		delete(s.entries, id)
		return nil, false, nil
	}
	entry.expiresAt = now.Add(s.ttl())
	s.entries[id] = entry
	return entry.doc.Clone(), true, nil
}

// Save stores a copy of doc and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, id string, doc *invoice.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]memoryEntry)
	}
	s.entries[id] = memoryEntry{doc: doc.Clone(), expiresAt: s.now().Add(s.ttl())}
	return nil
}

// Delete discards the session document.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	return len(s.entries)
}

// sweepLocked drops expired entries at most once a minute.
func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < time.Minute {
		return
	}
	s.lastSweep = now
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
