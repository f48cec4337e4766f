package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps Idempotency-Key records in memory for development and tests.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the timestamp source.
func (s *IdempotencyStore) WithClock(now func() time.Time) *IdempotencyStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Get returns the stored record for key, or nil when absent.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Reserve claims key under the store lock.
func (s *IdempotencyStore) Reserve(_ context.Context, key, requestHash string, staleBefore time.Time) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	if existing, ok := s.records[key]; ok {
		reclaimable := existing.Pending() && existing.RequestHash == requestHash && existing.UpdatedAt.Before(staleBefore)
		if !reclaimable {
			return &existing, nil
		}
		existing.UpdatedAt = ts
		s.records[key] = existing
		return nil, nil
	}
	s.records[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, CreatedAt: ts, UpdatedAt: ts}
	return nil, nil
}

// Complete records the adoption created under a pending key.
func (s *IdempotencyStore) Complete(_ context.Context, key string, adoptionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[key]
	if !ok || !existing.Pending() {
		return ports.ErrIdempotencyConflict
	}
	existing.AdoptionID = adoptionID
	existing.UpdatedAt = s.now()
	s.records[key] = existing
	return nil
}

// Release forgets a pending key.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok && existing.Pending() {
		delete(s.records, key)
	}
	return nil
}
