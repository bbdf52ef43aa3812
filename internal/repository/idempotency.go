package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// IdempotencyKey identifies one client-supplied Idempotency-Key for a user and operation.
type IdempotencyKey struct {
	UserID    string
	Operation string
	Hash      string
}

// NewIdempotencyKey hashes the raw header value so it is safe to use as a storage key.
func NewIdempotencyKey(userID, operation, raw string) IdempotencyKey {
	sum := sha256.Sum256([]byte(raw))
	return IdempotencyKey{
		UserID:    userID,
		Operation: operation,
		Hash:      hex.EncodeToString(sum[:]),
	}
}

// String is the composite key used by the stores.
func (k IdempotencyKey) String() string {
	return "IDEMPOTENCY#" + k.UserID + "#" + k.Operation + "#" + k.Hash
}

// StoredResponse is a response recorded for replay.
type StoredResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore records the first successful response for a key.
type IdempotencyStore interface {
	// Get returns the stored response, if any, for key.
	Get(ctx context.Context, key IdempotencyKey) (*StoredResponse, bool, error)

	// Store saves resp unless a response for key already exists.
	Store(ctx context.Context, key IdempotencyKey, resp StoredResponse) error
}

// InMemoryIdempotencyStore keeps responses in process memory until they expire.
type InMemoryIdempotencyStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	store map[string]idempotencyEntry
}

type idempotencyEntry struct {
	resp      StoredResponse
	expiresAt time.Time
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemoryIdempotencyStore{
		ttl:   ttl,
		now:   time.Now,
		store: make(map[string]idempotencyEntry),
	}
}

// Get implements IdempotencyStore
func (s *InMemoryIdempotencyStore) Get(ctx context.Context, key IdempotencyKey) (*StoredResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.store[key.String()]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.store, key.String())
		return nil, false, nil
	}
	resp := entry.resp
	return &resp, true, nil
}

// Store implements IdempotencyStore
func (s *InMemoryIdempotencyStore) Store(ctx context.Context, key IdempotencyKey, resp StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.store[key.String()]; ok && now.Before(entry.expiresAt) {
		return nil
	}
	s.store[key.String()] = idempotencyEntry{resp: resp, expiresAt: now.Add(s.ttl)}
	return nil
}

// Cleanup drops expired entries.
func (s *InMemoryIdempotencyStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, k)
		}
	}
}
