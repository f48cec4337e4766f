package application

import (
	"context"
	"errors"
	"time"

	types "github.com/Apurer/shelter-api/internal/domains/volunteers/application/types"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// Service orchestrates volunteer use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for a defaulted joinedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Create(ctx context.Context, input types.CreateVolunteerInput) (*types.VolunteerProjection, error) {
	joinedAt := s.now()
	if input.JoinedAt != nil {
		joinedAt = *input.JoinedAt
	}
	volunteer, err := domain.NewVolunteer(input.Name, input.Phone, input.Email, input.Note, joinedAt)
	if err != nil {
		return nil, mapError(err, 0)
	}
	saved, err := s.repo.Create(ctx, volunteer)
	if err != nil {
		return nil, mapError(err, 0)
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, input types.VolunteerIdentifier) (*types.VolunteerProjection, error) {
	found, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return found, nil
}

// Update edits profile fields. Status changes go through Approve, Suspend and Reinstate.
func (s *Service) Update(ctx context.Context, input types.UpdateVolunteerInput) (*types.VolunteerProjection, error) {
	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	v := current.Entity.Clone()
	var errs []error
	if input.Name != nil {
		errs = append(errs, v.ChangeName(*input.Name))
	}
	if input.Phone != nil {
		errs = append(errs, v.ChangePhone(*input.Phone))
	}
	if input.Email != nil {
		errs = append(errs, v.ChangeEmail(*input.Email))
	}
	if input.Note != nil {
		errs = append(errs, v.ChangeNote(*input.Note))
	}
	if input.JoinedAt != nil {
		errs = append(errs, v.ChangeJoinedAt(*input.JoinedAt))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, mapError(err, input.ID)
	}
	saved, err := s.repo.Update(ctx, v)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, input types.VolunteerIdentifier) error {
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err, input.ID)
	}
	return nil
}

func (s *Service) List(ctx context.Context, input types.ListVolunteersInput) (*types.VolunteerPage, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{"status": "invalid status enum"})
	}
	items, total, err := s.repo.List(ctx, ports.ListFilter{Status: input.Status, Keyword: input.Keyword}, input.Page)
	if err != nil {
		return nil, err
	}
	page := query.NewPage(items, input.Page, total)
	return &page, nil
}

func (s *Service) Approve(ctx context.Context, input types.VolunteerIdentifier) (*types.VolunteerProjection, error) {
	return s.transition(ctx, input.ID, domain.ActionApprove)
}

func (s *Service) Suspend(ctx context.Context, input types.VolunteerIdentifier) (*types.VolunteerProjection, error) {
	return s.transition(ctx, input.ID, domain.ActionSuspend)
}

func (s *Service) Reinstate(ctx context.Context, input types.VolunteerIdentifier) (*types.VolunteerProjection, error) {
	return s.transition(ctx, input.ID, domain.ActionReinstate)
}

// CountByStatus reports every status, including those with no volunteers.
func (s *Service) CountByStatus(ctx context.Context) ([]types.StatusCount, error) {
	rows, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[domain.Status]int64{}
	for _, row := range rows {
		counts[row.Status] += row.Count
	}
	out := make([]types.StatusCount, 0, 3)
	for _, status := range []domain.Status{domain.StatusPending, domain.StatusApproved, domain.StatusSuspended} {
		out = append(out, types.StatusCount{Status: status, Count: counts[status]})
	}
	return out, nil
}

func (s *Service) transition(ctx context.Context, id int64, action domain.Action) (*types.VolunteerProjection, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, id)
	}
	from := current.Entity.Status
	next, err := domain.Next(from, action)
	if err != nil {
		return nil, mapError(err, id)
	}
	saved, err := s.repo.UpdateStatus(ctx, id, from, next)
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, ports.ErrStatusChanged) {
		return nil, mapError(err, id)
	}
	fresh, ferr := s.repo.GetByID(ctx, id)
	if ferr != nil {
		return nil, mapError(ferr, id)
	}
	return nil, currentStatusConflict(action, fresh.Entity.Status, err)
}

var _ ports.Service = (*Service)(nil)
