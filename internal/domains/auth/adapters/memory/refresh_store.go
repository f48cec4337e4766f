package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

var _ ports.RefreshTokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore is a process-local store for refresh token ids.
type RefreshTokenStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{expires: map[string]time.Time{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *RefreshTokenStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *RefreshTokenStore) Save(_ context.Context, userID int64, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[key(userID, jti)] = s.now().Add(ttl)
	return nil
}

func (s *RefreshTokenStore) Consume(_ context.Context, userID int64, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(userID, jti)
	expiresAt, ok := s.expires[k]
	if !ok {
		return false, nil
	}
	delete(s.expires, k)
	return s.now().Before(expiresAt), nil
}

// PurgeExpired drops entries past their expiry and returns how many were removed.
func (s *RefreshTokenStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var purged int64
	for k, expiresAt := range s.expires {
		if !now.Before(expiresAt) {
			delete(s.expires, k)
			purged++
		}
	}
	return purged, nil
}

func key(userID int64, jti string) string {
	return fmt.Sprintf("refresh:%d:%s", userID, jti)
}
