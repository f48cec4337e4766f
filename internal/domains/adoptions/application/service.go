package application

import (
	"context"
	"errors"
	"strings"
	"time"

	types "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.Service = (*Service)(nil)

// idempotencyReservationTTL bounds how long a pending key blocks retries after its request died.
const idempotencyReservationTTL = 30 * time.Second

// Service runs the adoption lifecycle against an entity store.
type Service struct {
	repo        ports.Repository
	idempotency ports.IdempotencyStore
	now         func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the time source used for requestedAt, approvedAt and canceledAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key handling on Create.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// NewService wires the adoption service with its entity store.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a REQUESTED adoption for an animal that is still adoptable. With an idempotency key the key is
// reserved first, so concurrent retries never insert a second adoption.
func (s *Service) Create(ctx context.Context, input types.CreateAdoptionInput) (*types.AdoptionProjection, error) {
	adoption, err := domain.NewAdoption(input.AnimalID, input.ApplicantName, input.ApplicantPhone, s.now())
	if err != nil {
		return nil, mapError(err, 0)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" || s.idempotency == nil {
		return s.create(ctx, adoption)
	}
	fingerprint, err := FingerprintCreateAdoption(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.idempotency.Reserve(ctx, key, fingerprint, s.now().Add(-idempotencyReservationTTL))
	switch {
	case errors.Is(err, ports.ErrIdempotencyInFlight):
		return nil, idempotencyInFlight(key)
	case err != nil:
		return nil, err
	case existing != nil:
		return s.replay(ctx, key, fingerprint, existing)
	}

	saved, err := s.create(ctx, adoption)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}
		return nil, err
	}
	if err := s.idempotency.Complete(ctx, key, saved.Entity.ID); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Service) create(ctx context.Context, adoption *domain.Adoption) (*types.AdoptionProjection, error) {
	animal, err := s.repo.FindAnimal(ctx, adoption.AnimalID)
	if err != nil {
		if errors.Is(err, ports.ErrAnimalNotFound) {
			return nil, failure.Wrap(failure.AnimalNotFound(adoption.AnimalID), err)
		}
		return nil, err
	}
	if !animal.Status.Adoptable() {
		return nil, animalStatusConflict(animal.ID, animal.Status, ports.ErrAnimalUnavailable)
	}

	saved, err := s.repo.Create(ctx, adoption)
	if err != nil {
		if errors.Is(err, ports.ErrAnimalNotFound) {
			return nil, failure.Wrap(failure.AnimalNotFound(adoption.AnimalID), err)
		}
		return nil, mapError(err, 0)
	}
	return saved, nil
}

func (s *Service) replay(ctx context.Context, key, fingerprint string, record *ports.IdempotencyRecord) (*types.AdoptionProjection, error) {
	if record.RequestHash != fingerprint {
		return nil, idempotencyConflict(key, ports.ErrIdempotencyConflict)
	}
	if record.Pending() {
		return nil, idempotencyInFlight(key)
	}
	return s.GetByID(ctx, types.AdoptionIdentifier{ID: record.AdoptionID})
}

// GetByID loads one adoption.
func (s *Service) GetByID(ctx context.Context, input types.AdoptionIdentifier) (*types.AdoptionProjection, error) {
	found, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return found, nil
}

// List returns a filtered page of adoptions.
func (s *Service) List(ctx context.Context, input types.ListAdoptionsInput) (*types.AdoptionPage, error) {
	filter := ports.ListFilter{
		AnimalID:      input.AnimalID,
		Keyword:       input.Keyword,
		RequestedFrom: input.From,
		RequestedTo:   input.To,
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
		return nil, err
	}
	page := query.NewPage(items, input.Page, total)
	return &page, nil
}

// Approve moves a REQUESTED adoption to APPROVED.
func (s *Service) Approve(ctx context.Context, input types.AdoptionIdentifier) (*types.AdoptionProjection, error) {
	return s.transition(ctx, input.ID, domain.ActionApprove, func(a *domain.Adoption) error {
		return a.Approve(s.now())
	})
}

// Cancel moves a REQUESTED or APPROVED adoption to CANCELED.
func (s *Service) Cancel(ctx context.Context, input types.CancelAdoptionInput) (*types.AdoptionProjection, error) {
	return s.transition(ctx, input.ID, domain.ActionCancel, func(a *domain.Adoption) error {
		return a.Cancel(input.CancelReason, s.now())
	})
}

// Confirm moves an APPROVED adoption to CONFIRMED and marks the animal ADOPTED in the same unit of work.
func (s *Service) Confirm(ctx context.Context, input types.ConfirmAdoptionInput) (*types.AdoptionProjection, error) {
	current, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	adoption := current.Entity.Clone()
	expected := adoption.Status
	if err := adoption.Confirm(input.AdoptedAt); err != nil {
		return nil, mapError(err, input.ID)
	}

	var (
		saved        *types.AdoptionProjection
		animalStatus animaldomain.Status
	)
	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		prev, err := tx.MarkAnimalAdopted(ctx, adoption.AnimalID)
		if err != nil {
			animalStatus = prev
			return err
		}
		saved, err = tx.UpdateAdoption(ctx, adoption, expected)
		return err
	})
	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, ports.ErrAnimalUnavailable):
		return nil, animalStatusConflict(adoption.AnimalID, animalStatus, err)
	case errors.Is(err, ports.ErrAnimalNotFound):
		return nil, failure.Wrap(failure.AnimalNotFound(adoption.AnimalID), err)
	}
	return nil, s.resolveWriteError(ctx, input.ID, domain.ActionConfirm, err)
}

func (s *Service) transition(ctx context.Context, id int64, action domain.Action, apply func(*domain.Adoption) error) (*types.AdoptionProjection, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, id)
	}
	adoption := current.Entity.Clone()
	expected := adoption.Status
	if err := apply(adoption); err != nil {
		return nil, mapError(err, id)
	}
	saved, err := s.repo.Update(ctx, adoption, expected)
	if err != nil {
		return nil, s.resolveWriteError(ctx, id, action, err)
	}
	return saved, nil
}

// resolveWriteError re-reads the adoption after a conditional write lost a race so the conflict reports the fresh status.
func (s *Service) resolveWriteError(ctx context.Context, id int64, action domain.Action, err error) error {
	if !errors.Is(err, ports.ErrStatusChanged) {
		return mapError(err, id)
	}
	fresh, ferr := s.repo.FindByID(ctx, id)
	if ferr != nil {
		return mapError(ferr, id)
	}
	return currentStatusConflict(action, fresh.Entity.Status, err)
}
