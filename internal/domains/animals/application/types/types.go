package types

import (
	"time"

	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// AnimalProjection transports an animal together with its persistence metadata.
type AnimalProjection = projection.Projection[*domain.Animal]

// AnimalPage is a page of animals.
type AnimalPage = query.Page[*AnimalProjection]

// AnimalIdentifier addresses one animal.
type AnimalIdentifier struct {
	ID int64
}

// CreateAnimalInput registers a new animal. Zero values mean "not supplied".
type CreateAnimalInput struct {
	Name       string
	Species    string
	Breed      string
	Sex        string
	AgeYears   *int
	IntakeDate time.Time
	Neutered   bool
	Status     string
	Note       string
}

// UpdateAnimalInput is a partial update; nil fields are left untouched.
type UpdateAnimalInput struct {
	ID         int64
	Name       *string
	Species    *string
	Breed      *string
	Sex        *string
	AgeYears   *int
	IntakeDate *time.Time
	Neutered   *bool
	Status     *string
	Note       *string
}

// ChangeStatusInput sets the administrative status.
type ChangeStatusInput struct {
	ID     int64
	Status string
}

// SetNeuteredInput sets the neuter flag.
type SetNeuteredInput struct {
	ID       int64
	Neutered bool
}

// ListAnimalsInput filters and pages the animal list.
type ListAnimalsInput struct {
	Species  *string
	Neutered *bool
	Status   *string
	Keyword  *string
	From     *time.Time
	To       *time.Time
	Page     query.Request
}
