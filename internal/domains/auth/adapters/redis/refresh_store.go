// Package redis keeps refresh token ids in Redis with a TTL matching the token lifetime.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

const keyPrefix = "refresh:"

var _ ports.RefreshTokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore stores one key per live refresh token: refresh:<userId>:<jti>.
type RefreshTokenStore struct {
	client goredis.UniversalClient
}

// NewRefreshTokenStore wraps a client. Caller owns the client lifecycle.
func NewRefreshTokenStore(client goredis.UniversalClient) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

func (s *RefreshTokenStore) Save(ctx context.Context, userID int64, jti string, ttl time.Duration) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	if jti == "" {
		return errors.New("refresh token id is required")
	}
	return s.client.Set(ctx, Key(userID, jti), "1", ttl).Err()
}

// Consume deletes the key; DEL reports the number of removed keys, so only one caller observes 1.
func (s *RefreshTokenStore) Consume(ctx context.Context, userID int64, jti string) (bool, error) {
	if err := s.ensureClient(); err != nil {
		return false, err
	}
	removed, err := s.client.Del(ctx, Key(userID, jti)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// Key formats the storage key for a token.
func Key(userID int64, jti string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, userID, jti)
}

func (s *RefreshTokenStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis refresh token store not configured")
	}
	return nil
}
