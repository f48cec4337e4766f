package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var (
	ErrNotFound       = errors.New("medical record not found")
	ErrAnimalNotFound = errors.New("animal not found")
)

// SortFields maps API sort keys to storage columns.
var SortFields = map[string]string{
	"performedAt": "performed_at",
	"createdAt":   "created_at",
	"cost":        "cost",
}

var DefaultSort = query.Sort{Field: "performedAt", Direction: query.Desc}

// ListFilter narrows medical record listings. Nil fields are ignored.
type ListFilter struct {
	AnimalID      *int64
	Type          *domain.Type
	PerformedFrom *time.Time
	PerformedTo   *time.Time
}

// Repository is the persistence port for medical records.
type Repository interface {
	// AnimalExists reports whether the animal a record would point at is present.
	AnimalExists(ctx context.Context, animalID int64) (bool, error)
	// Create returns ErrAnimalNotFound when the animal is missing at insert time.
	Create(ctx context.Context, record *domain.Record) (*projection.Projection[*domain.Record], error)
	Update(ctx context.Context, record *domain.Record) (*projection.Projection[*domain.Record], error)
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Record], error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter, page query.Request) ([]*projection.Projection[*domain.Record], int64, error)
	// Recent returns the animal's latest records by performedAt, newest first.
	Recent(ctx context.Context, animalID int64, limit int) ([]*projection.Projection[*domain.Record], error)
}
