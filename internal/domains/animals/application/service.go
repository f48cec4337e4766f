package application

import (
	"context"
	"errors"

	types "github.com/Apurer/shelter-api/internal/domains/animals/application/types"
	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Service = (*Service)(nil)

// Service orchestrates the animals use cases.
type Service struct {
	repo ports.Repository
}

// NewService wires the animals service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new animal.
func (s *Service) Create(ctx context.Context, input types.CreateAnimalInput) (*types.AnimalProjection, error) {
	animal, err := domain.NewAnimal(domain.Attributes{
		Name:       input.Name,
		Species:    input.Species,
		Breed:      input.Breed,
		Sex:        domain.Sex(input.Sex),
		AgeYears:   input.AgeYears,
		IntakeDate: input.IntakeDate,
		Neutered:   input.Neutered,
		Status:     domain.Status(input.Status),
		Note:       input.Note,
	})
	if err != nil {
		return nil, mapError(err, 0)
	}
	saved, err := s.repo.Create(ctx, animal)
	if err != nil {
		return nil, mapError(err, 0)
	}
	return saved, nil
}

// GetByID loads one animal.
func (s *Service) GetByID(ctx context.Context, input types.AnimalIdentifier) (*types.AnimalProjection, error) {
	found, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return found, nil
}

// Update applies a partial update. The write is rejected if the status changed since it was read.
func (s *Service) Update(ctx context.Context, input types.UpdateAnimalInput) (*types.AnimalProjection, error) {
	return s.mutate(ctx, input.ID, func(animal *domain.Animal) error {
		return applyUpdate(animal, input)
	})
}

// ChangeStatus moves the animal to an administrative status other than ADOPTED.
func (s *Service) ChangeStatus(ctx context.Context, input types.ChangeStatusInput) (*types.AnimalProjection, error) {
	if input.Status == "" {
		return nil, failure.Validation("animal validation failed", map[string]string{"status": "status is required"})
	}
	return s.mutate(ctx, input.ID, func(animal *domain.Animal) error {
		return animal.ChangeStatus(domain.Status(input.Status))
	})
}

// SetNeutered records the neuter flag.
func (s *Service) SetNeutered(ctx context.Context, input types.SetNeuteredInput) (*types.AnimalProjection, error) {
	return s.mutate(ctx, input.ID, func(animal *domain.Animal) error {
		animal.SetNeutered(input.Neutered)
		return nil
	})
}

// Delete removes an animal that no adoption references.
func (s *Service) Delete(ctx context.Context, input types.AnimalIdentifier) error {
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err, input.ID)
	}
	return nil
}

// List returns a filtered page of animals.
func (s *Service) List(ctx context.Context, input types.ListAnimalsInput) (*types.AnimalPage, error) {
	filter := ports.ListFilter{
		Species:    input.Species,
		Neutered:   input.Neutered,
		Keyword:    input.Keyword,
		IntakeFrom: input.From,
		IntakeTo:   input.To,
	}
	if input.Status != nil {
		status := domain.Status(*input.Status)
		if !status.Valid() {
			return nil, failure.InvalidQuery("invalid query parameter", map[string]string{"status": "invalid status enum"})
		}
		filter.Status = &status
	}
	items, total, err := s.repo.List(ctx, filter, input.Page)
	if err != nil {
		return nil, mapError(err, 0)
	}
	page := query.NewPage(items, input.Page, total)
	return &page, nil
}

func (s *Service) mutate(ctx context.Context, id int64, apply func(*domain.Animal) error) (*types.AnimalProjection, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, id)
	}
	animal := current.Entity.Clone()
	expected := animal.Status
	if err := apply(animal); err != nil {
		return nil, mapError(err, id)
	}
	saved, err := s.repo.Update(ctx, animal, expected)
	if err != nil {
		return nil, mapError(err, id)
	}
	return saved, nil
}

func applyUpdate(animal *domain.Animal, input types.UpdateAnimalInput) error {
	var errs []error
	if input.Name != nil {
		errs = append(errs, animal.Rename(*input.Name))
	}
	if input.Species != nil {
		errs = append(errs, animal.ChangeSpecies(*input.Species))
	}
	if input.Breed != nil {
		errs = append(errs, animal.ChangeBreed(*input.Breed))
	}
	if input.Sex != nil {
		errs = append(errs, animal.ChangeSex(domain.Sex(*input.Sex)))
	}
	if input.AgeYears != nil {
		errs = append(errs, animal.ChangeAge(input.AgeYears))
	}
	if input.IntakeDate != nil {
		errs = append(errs, animal.ChangeIntakeDate(*input.IntakeDate))
	}
	if input.Neutered != nil {
		animal.SetNeutered(*input.Neutered)
	}
	if input.Status != nil {
		errs = append(errs, animal.ChangeStatus(domain.Status(*input.Status)))
	}
	if input.Note != nil {
		errs = append(errs, animal.ChangeNote(*input.Note))
	}
	return errors.Join(errs...)
}
