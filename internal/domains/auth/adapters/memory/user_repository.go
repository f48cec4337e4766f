package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository keeps staff accounts in memory, keyed by email.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.StaffUser
	nextID  int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: map[string]*domain.StaffUser{}}
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.StaffUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.StaffUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.byEmail {
		if user.ID == id {
			return user.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *UserRepository) Save(_ context.Context, user *domain.StaffUser) (*domain.StaffUser, error) {
	if user == nil {
		return nil, errors.New("staff user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := user.Clone()
	if existing, ok := r.byEmail[stored.Email]; ok {
		stored.ID = existing.ID
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	r.byEmail[stored.Email] = stored
	return stored.Clone(), nil
}
