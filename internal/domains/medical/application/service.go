package application

import (
	"context"
	"errors"
	"strconv"

	types "github.com/Apurer/shelter-api/internal/domains/medical/application/types"
	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/domains/medical/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

const (
	DefaultSummaryLimit = 5
	MaxSummaryLimit     = 50
)

// Service orchestrates medical record use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input types.CreateRecordInput) (*types.RecordProjection, error) {
	record, err := domain.NewRecord(input.AnimalID, input.Type, input.PerformedAt, input.Cost, input.Description)
	if err != nil {
		return nil, mapError(err, 0)
	}
	saved, err := s.repo.Create(ctx, record)
	if errors.Is(err, ports.ErrAnimalNotFound) {
		return nil, animalNotFound(input.AnimalID, err)
	}
	if err != nil {
		return nil, mapError(err, 0)
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, input types.RecordIdentifier) (*types.RecordProjection, error) {
	found, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return found, nil
}

func (s *Service) Update(ctx context.Context, input types.UpdateRecordInput) (*types.RecordProjection, error) {
	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	record := current.Entity.Clone()
	var errs []error
	if input.Type != nil {
		errs = append(errs, record.ChangeType(*input.Type))
	}
	if input.PerformedAt != nil {
		errs = append(errs, record.ChangePerformedAt(*input.PerformedAt))
	}
	if input.Cost != nil {
		errs = append(errs, record.ChangeCost(input.Cost))
	}
	if input.Description != nil {
		errs = append(errs, record.ChangeDescription(*input.Description))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, mapError(err, input.ID)
	}
	saved, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, input types.RecordIdentifier) error {
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err, input.ID)
	}
	return nil
}

// List pages records. When AnimalID is set the animal must exist.
func (s *Service) List(ctx context.Context, input types.ListRecordsInput) (*types.RecordPage, error) {
	if input.Type != nil && !input.Type.Valid() {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{"type": "invalid type enum"})
	}
	if input.From != nil && input.To != nil && input.From.After(*input.To) {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{"from": "from must be <= to"})
	}
	if input.AnimalID != nil {
		if err := s.ensureAnimal(ctx, *input.AnimalID); err != nil {
			return nil, err
		}
	}
	items, total, err := s.repo.List(ctx, ports.ListFilter{
		AnimalID:      input.AnimalID,
		Type:          input.Type,
		PerformedFrom: input.From,
		PerformedTo:   input.To,
	}, input.Page)
	if err != nil {
		return nil, err
	}
	page := query.NewPage(items, input.Page, total)
	return &page, nil
}

// RecentSummary returns the animal's latest records, newest first.
func (s *Service) RecentSummary(ctx context.Context, input types.RecentSummaryInput) ([]*types.RecordProjection, error) {
	limit := int64(DefaultSummaryLimit)
	if input.Limit != nil {
		limit = *input.Limit
	}
	if limit < 1 || limit > MaxSummaryLimit {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{
			"limit": "limit must be between 1 and " + strconv.Itoa(MaxSummaryLimit),
		})
	}
	if err := s.ensureAnimal(ctx, input.AnimalID); err != nil {
		return nil, err
	}
	return s.repo.Recent(ctx, input.AnimalID, int(limit))
}

func (s *Service) ensureAnimal(ctx context.Context, animalID int64) error {
	ok, err := s.repo.AnimalExists(ctx, animalID)
	if err != nil {
		return err
	}
	if !ok {
		return animalNotFound(animalID, ports.ErrAnimalNotFound)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
