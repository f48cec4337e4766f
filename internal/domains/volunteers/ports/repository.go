package ports

import (
	"context"
	"errors"

	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var (
	ErrNotFound = errors.New("volunteer not found")
	// ErrStatusChanged is returned by UpdateStatus when the stored status no longer matches.
	ErrStatusChanged = errors.New("volunteer status changed")
)

// SortFields maps API sort keys to storage columns.
var SortFields = map[string]string{
	"joinedAt":  "joined_at",
	"createdAt": "created_at",
	"name":      "name",
	"status":    "status",
}

var DefaultSort = query.Sort{Field: "createdAt", Direction: query.Desc}

// ListFilter narrows volunteer listings. Keyword matches name, phone or email.
type ListFilter struct {
	Status  *domain.Status
	Keyword *string
}

// StatusCount is one row of the per-status headcount.
type StatusCount struct {
	Status domain.Status
	Count  int64
}

// Repository is the persistence port for volunteers.
type Repository interface {
	Create(ctx context.Context, volunteer *domain.Volunteer) (*projection.Projection[*domain.Volunteer], error)
	// Update writes profile fields. The stored status is never touched.
	Update(ctx context.Context, volunteer *domain.Volunteer) (*projection.Projection[*domain.Volunteer], error)
	// UpdateStatus moves id from expected to next, or fails with ErrStatusChanged.
	UpdateStatus(ctx context.Context, id int64, expected, next domain.Status) (*projection.Projection[*domain.Volunteer], error)
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Volunteer], error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter, page query.Request) ([]*projection.Projection[*domain.Volunteer], int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}
