package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository persists staff accounts in PostgreSQL using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type staffUserRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:100"`
	Role         string    `gorm:"column:role;size:10"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (staffUserRecord) TableName() string { return "staff_users" }

// Save inserts or updates a staff user keyed by email.
func (r *UserRepository) Save(ctx context.Context, user *domain.StaffUser) (*domain.StaffUser, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("staff user is nil")
	}
	record := staffUserRecord{Email: user.Email, PasswordHash: user.PasswordHash, Role: string(user.Role)}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, record.Email)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.StaffUser, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, cond string, arg any) (*domain.StaffUser, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record staffUserRecord
	if err := r.db.WithContext(ctx).First(&record, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.StaffUser{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Role:         domain.Role(record.Role),
	}, nil
}

func (r *UserRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres staff user repository not configured")
	}
	return nil
}
