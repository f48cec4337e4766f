package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var (
	ErrNotFound       = errors.New("adoption not found")
	ErrAnimalNotFound = errors.New("animal not found")
	// ErrStatusChanged signals a conditional write matched no row because the stored status differs from the expected one.
	ErrStatusChanged = errors.New("adoption status changed concurrently")
	// ErrAnimalUnavailable signals the animal is already ADOPTED or DECEASED.
	ErrAnimalUnavailable = errors.New("animal is not available for adoption")
)

// SortFields maps API sort keys to storage columns.
var SortFields = map[string]string{
	"requestedAt": "requested_at",
	"approvedAt":  "approved_at",
	"adoptedAt":   "adopted_at",
	"createdAt":   "created_at",
}

// DefaultSort applies when the request names no sort.
var DefaultSort = query.Sort{Field: "requestedAt", Direction: query.Desc}

// AnimalRef is the part of an animal the adoption lifecycle reads.
type AnimalRef struct {
	ID     int64
	Status animaldomain.Status
}

// ListFilter narrows adoption listings. Nil fields are ignored.
type ListFilter struct {
	Status        *domain.Status
	AnimalID      *int64
	Keyword       *string
	RequestedFrom *time.Time
	RequestedTo   *time.Time
}

// Repository is the entity store consumed by the adoption lifecycle.
type Repository interface {
	// FindAnimal returns ErrAnimalNotFound when the animal does not exist.
	FindAnimal(ctx context.Context, animalID int64) (*AnimalRef, error)
	// FindByID returns ErrNotFound when the adoption does not exist.
	FindByID(ctx context.Context, id int64) (*projection.Projection[*domain.Adoption], error)
	Create(ctx context.Context, adoption *domain.Adoption) (*projection.Projection[*domain.Adoption], error)
	// Update writes the adoption only if its stored status equals expected, else ErrStatusChanged.
	Update(ctx context.Context, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error)
	List(ctx context.Context, filter ListFilter, page query.Request) ([]*projection.Projection[*domain.Adoption], int64, error)
	// RunInTx executes fn as one unit of work. Every write made through tx commits together or not at all.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write surface available inside RunInTx.
type Tx interface {
	// UpdateAdoption has the same conditional semantics as Repository.Update.
	UpdateAdoption(ctx context.Context, adoption *domain.Adoption, expected domain.Status) (*projection.Projection[*domain.Adoption], error)
	// MarkAnimalAdopted sets the animal to ADOPTED and returns its previous status.
	// It fails with ErrAnimalUnavailable (and the current status) when the animal is ADOPTED or DECEASED.
	MarkAnimalAdopted(ctx context.Context, animalID int64) (animaldomain.Status, error)
}
