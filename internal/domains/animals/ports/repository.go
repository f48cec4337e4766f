package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var (
	ErrNotFound = errors.New("animal not found")
	// ErrReferenced is returned when deleting an animal that adoption or medical records point at.
	ErrReferenced = errors.New("animal is referenced by other records")
	// ErrStatusChanged is returned when the stored status no longer matches the expected one.
	ErrStatusChanged = errors.New("animal status changed concurrently")
)

// SortFields maps API sort keys to storage columns.
var SortFields = map[string]string{
	"createdAt":  "created_at",
	"intakeDate": "intake_date",
	"updatedAt":  "updated_at",
	"ageYears":   "age_years",
	"species":    "species",
	"status":     "status",
}

// DefaultSort applies when the request names no sort.
var DefaultSort = query.Sort{Field: "createdAt", Direction: query.Desc}

// ListFilter narrows animal listings. Nil fields are ignored.
type ListFilter struct {
	Species    *string
	Neutered   *bool
	Status     *domain.Status
	Keyword    *string
	IntakeFrom *time.Time
	IntakeTo   *time.Time
}

// Repository persists animals.
type Repository interface {
	Create(ctx context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error)
	// Update stores the animal only if its persisted status still equals expected.
	Update(ctx context.Context, animal *domain.Animal, expected domain.Status) (*projection.Projection[*domain.Animal], error)
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Animal], error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter, page query.Request) ([]*projection.Projection[*domain.Animal], int64, error)
}
