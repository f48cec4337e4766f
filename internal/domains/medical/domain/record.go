package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// Type classifies a medical record.
type Type string

const (
	TypeNeuter    Type = "NEUTER"
	TypeSurgery   Type = "SURGERY"
	TypeTreatment Type = "TREATMENT"
	TypeVaccine   Type = "VACCINE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNeuter, TypeSurgery, TypeTreatment, TypeVaccine:
		return true
	}
	return false
}

const (
	MaxCost              int64 = 100_000_000
	MaxDescriptionLength       = 255
)

var (
	ErrInvalidAnimalID     = errors.New("animalId must be a positive integer")
	ErrTypeRequired        = errors.New("type is required")
	ErrInvalidType         = errors.New("invalid type enum")
	ErrPerformedAtRequired = errors.New("performedAt is required")
	ErrInvalidCost         = errors.New("cost must be an integer between 0 and 100000000")
	ErrTooLong             = errors.New("value is too long")
)

// Record is one treatment, vaccination or procedure performed on an animal.
// Cost is optional; nil means unknown, not free.
type Record struct {
	ID          int64
	AnimalID    int64
	Type        Type
	PerformedAt time.Time
	Cost        *int64
	Description string
}

// NewRecord validates and constructs a medical record for animalID.
func NewRecord(animalID int64, recordType Type, performedAt time.Time, cost *int64, description string) (*Record, error) {
	r := &Record{}
	var animalErr error
	if animalID <= 0 {
		animalErr = failure.Field("animalId", ErrInvalidAnimalID)
	}
	r.AnimalID = animalID
	err := errors.Join(
		animalErr,
		r.ChangeType(recordType),
		r.ChangePerformedAt(performedAt),
		r.ChangeCost(cost),
		r.ChangeDescription(description),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) ChangeType(t Type) error {
	switch {
	case t == "":
		return failure.Field("type", ErrTypeRequired)
	case !t.Valid():
		return failure.Field("type", ErrInvalidType)
	}
	r.Type = t
	return nil
}

func (r *Record) ChangePerformedAt(at time.Time) error {
	if at.IsZero() {
		return failure.Field("performedAt", ErrPerformedAtRequired)
	}
	r.PerformedAt = at.UTC()
	return nil
}

// ChangeCost sets or clears the cost.
func (r *Record) ChangeCost(cost *int64) error {
	if cost == nil {
		r.Cost = nil
		return nil
	}
	if *cost < 0 || *cost > MaxCost {
		return failure.Field("cost", ErrInvalidCost)
	}
	v := *cost
	r.Cost = &v
	return nil
}

func (r *Record) ChangeDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return failure.Field("description", ErrTooLong)
	}
	r.Description = description
	return nil
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Cost != nil {
		cost := *r.Cost
		clone.Cost = &cost
	}
	return &clone
}
