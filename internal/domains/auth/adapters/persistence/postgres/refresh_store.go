package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

var _ ports.RefreshTokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore persists live refresh token ids in PostgreSQL.
type RefreshTokenStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRefreshTokenStore wires a PostgreSQL-backed refresh token store. Caller owns DB lifecycle.
func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db, now: time.Now}
}

type refreshTokenRecord struct {
	UserID    int64     `gorm:"primaryKey;column:user_id;autoIncrement:false"`
	JTI       string    `gorm:"primaryKey;column:jti;size:64"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (refreshTokenRecord) TableName() string { return "refresh_tokens" }

func (s *RefreshTokenStore) Save(ctx context.Context, userID int64, jti string, ttl time.Duration) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if jti == "" {
		return errors.New("refresh token id is required")
	}
	rec := refreshTokenRecord{UserID: userID, JTI: jti, ExpiresAt: s.now().Add(ttl).UTC()}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Consume deletes the row if it is still live. RowsAffected tells concurrent callers apart.
func (s *RefreshTokenStore) Consume(ctx context.Context, userID int64, jti string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND jti = ? AND expires_at > ?", userID, jti, s.now().UTC()).
		Delete(&refreshTokenRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// PurgeExpired removes expired tokens and returns how many rows were deleted.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&refreshTokenRecord{})
	return result.RowsAffected, result.Error
}

func (s *RefreshTokenStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres refresh token store not configured")
	}
	return nil
}
