package mapper

import (
	"time"

	animaltypes "github.com/Apurer/shelter-api/internal/domains/animals/application/types"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// CreateAnimal is the inbound payload for POST /api/animals.
type CreateAnimal struct {
	Name       string `json:"name"`
	Species    string `json:"species"`
	Breed      string `json:"breed"`
	Sex        string `json:"sex"`
	AgeYears   *int   `json:"ageYears"`
	IntakeDate string `json:"intakeDate"`
	Neutered   bool   `json:"neutered"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

// UpdateAnimal preserves field presence for partial updates.
type UpdateAnimal struct {
	Name       *string `json:"name"`
	Species    *string `json:"species"`
	Breed      *string `json:"breed"`
	Sex        *string `json:"sex"`
	AgeYears   *int    `json:"ageYears"`
	IntakeDate *string `json:"intakeDate"`
	Neutered   *bool   `json:"neutered"`
	Status     *string `json:"status"`
	Note       *string `json:"note"`
}

type ChangeStatus struct {
	Status string `json:"status" binding:"required"`
}

type SetNeutered struct {
	Neutered *bool `json:"neutered" binding:"required"`
}

// Animal is the HTTP representation of an animal.
type Animal struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Species    string    `json:"species"`
	Breed      string    `json:"breed"`
	Sex        string    `json:"sex"`
	AgeYears   *int      `json:"ageYears"`
	IntakeDate time.Time `json:"intakeDate"`
	Neutered   bool      `json:"neutered"`
	Status     string    `json:"status"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToCreateInput converts the payload. An empty intakeDate is left for the domain to reject.
func ToCreateInput(in CreateAnimal) (animaltypes.CreateAnimalInput, error) {
	out := animaltypes.CreateAnimalInput{
		Name:     in.Name,
		Species:  in.Species,
		Breed:    in.Breed,
		Sex:      in.Sex,
		AgeYears: in.AgeYears,
		Neutered: in.Neutered,
		Status:   in.Status,
		Note:     in.Note,
	}
	if in.IntakeDate != "" {
		t, err := query.ParseTimestamp(in.IntakeDate)
		if err != nil {
			return out, invalidDate("intakeDate")
		}
		out.IntakeDate = t
	}
	return out, nil
}

func ToUpdateInput(id int64, in UpdateAnimal) (animaltypes.UpdateAnimalInput, error) {
	out := animaltypes.UpdateAnimalInput{
		ID:       id,
		Name:     in.Name,
		Species:  in.Species,
		Breed:    in.Breed,
		Sex:      in.Sex,
		AgeYears: in.AgeYears,
		Neutered: in.Neutered,
		Status:   in.Status,
		Note:     in.Note,
	}
	if in.IntakeDate != nil {
		t, err := query.ParseTimestamp(*in.IntakeDate)
		if err != nil {
			return out, invalidDate("intakeDate")
		}
		out.IntakeDate = &t
	}
	return out, nil
}

func FromProjection(p *animaltypes.AnimalProjection) Animal {
	if p == nil || p.Entity == nil {
		return Animal{}
	}
	a := p.Entity
	return Animal{
		ID:         a.ID,
		Name:       a.Name,
		Species:    a.Species,
		Breed:      a.Breed,
		Sex:        string(a.Sex),
		AgeYears:   a.AgeYears,
		IntakeDate: a.IntakeDate,
		Neutered:   a.Neutered,
		Status:     string(a.Status),
		Note:       a.Note,
		CreatedAt:  p.Metadata.CreatedAt,
		UpdatedAt:  p.Metadata.UpdatedAt,
	}
}

func FromPage(p *animaltypes.AnimalPage) query.Page[Animal] {
	return query.MapPage(*p, FromProjection)
}

func invalidDate(field string) error {
	return failure.Validation("animal validation failed", map[string]string{field: field + " must be ISO date"})
}
