package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

const reserveAttempts = 3

// IdempotencyStore persists Idempotency-Key values for adoption creation.
type IdempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore wires a PostgreSQL-backed idempotency store.
func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Reserve inserts a pending row, or takes over a stale pending row with the same hash. Either write is a single
// statement, so two requests racing on one key cannot both win.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, requestHash string, staleBefore time.Time) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	for range reserveAttempts {
		now := time.Now().UTC()
		row := idempotencyRecord{Key: key, RequestHash: requestHash, CreatedAt: now, UpdatedAt: now}
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return nil, nil
		}

		res = s.db.WithContext(ctx).Model(&idempotencyRecord{}).
			Where("key = ? AND adoption_id = 0 AND request_hash = ? AND updated_at < ?", key, requestHash, staleBefore).
			Update("updated_at", now)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return nil, nil
		}

		existing, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		// Released between the insert and the read; try again.
	}
	return nil, ports.ErrIdempotencyInFlight
}

// Complete binds a pending key to its adoption.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, adoptionID int64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&idempotencyRecord{}).
		Where("key = ? AND adoption_id = 0", key).
		Updates(map[string]any{"adoption_id": adoptionID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrIdempotencyConflict
	}
	return nil
}

// Release deletes a pending key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("key = ? AND adoption_id = 0", key).Delete(&idempotencyRecord{}).Error
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	AdoptionID  int64     `gorm:"column:adoption_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "adoption_idempotency_keys" }

func (r idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		RequestHash: r.RequestHash,
		AdoptionID:  r.AdoptionID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
