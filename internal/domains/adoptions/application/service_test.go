package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adoptionmemory "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/memory"
	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var fixedNow = time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	animals   *animalmemory.Repository
	adoptions *adoptionmemory.Repository
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	animals := animalmemory.NewRepository()
	adoptions := adoptionmemory.NewRepository(animals)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{svc: NewService(adoptions, opts...), animals: animals, adoptions: adoptions}
}

func (f *fixture) shelter(t *testing.T, status animaldomain.Status) int64 {
	t.Helper()
	saved, err := f.animals.Create(context.Background(), &animaldomain.Animal{
		Name:       "Bori",
		Species:    "DOG",
		Sex:        animaldomain.SexUnknown,
		IntakeDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		Status:     status,
	})
	require.NoError(t, err)
	return saved.Entity.ID
}

func (f *fixture) animalStatus(t *testing.T, id int64) animaldomain.Status {
	t.Helper()
	found, err := f.animals.GetByID(context.Background(), id)
	require.NoError(t, err)
	return found.Entity.Status
}

func (f *fixture) request(t *testing.T, animalID int64) *adoptiontypes.AdoptionProjection {
	t.Helper()
	created, err := f.svc.Create(context.Background(), adoptiontypes.CreateAdoptionInput{
		AnimalID:       animalID,
		ApplicantName:  "Kim Minji",
		ApplicantPhone: "010-1234-5678",
	})
	require.NoError(t, err)
	return created
}

func requireConflict(t *testing.T, err error, key string, want any) {
	t.Helper()
	require.ErrorIs(t, err, failure.ErrStateConflict)
	f, ok := failure.As(err)
	require.True(t, ok)
	require.Equal(t, want, f.Details[key])
}

func TestFullLifecycleMarksAnimalAdopted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	animalID := f.shelter(t, animaldomain.StatusSheltered)

	created := f.request(t, animalID)
	require.Equal(t, domain.StatusRequested, created.Entity.Status)
	require.Equal(t, fixedNow, created.Entity.RequestedAt)

	approved, err := f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, approved.Entity.Status)
	require.Equal(t, fixedNow, *approved.Entity.ApprovedAt)

	adoptedAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	confirmed, err := f.svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: created.Entity.ID, AdoptedAt: adoptedAt})
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, confirmed.Entity.Status)
	require.Equal(t, adoptedAt, *confirmed.Entity.AdoptedAt)
	require.Equal(t, animaldomain.StatusAdopted, f.animalStatus(t, animalID))

	stored, err := f.svc.GetByID(ctx, adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, stored.Entity.Status)
}

func TestCancelFromRequested(t *testing.T) {
	f := newFixture(t)
	created := f.request(t, f.shelter(t, animaldomain.StatusSheltered))

	canceled, err := f.svc.Cancel(context.Background(), adoptiontypes.CancelAdoptionInput{ID: created.Entity.ID, CancelReason: "moved abroad"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCanceled, canceled.Entity.Status)
	require.Equal(t, "moved abroad", canceled.Entity.CancelReason)
	require.Equal(t, fixedNow, *canceled.Entity.CanceledAt)
}

func TestConfirmWithoutApprovalIsRejected(t *testing.T) {
	f := newFixture(t)
	animalID := f.shelter(t, animaldomain.StatusSheltered)
	created := f.request(t, animalID)

	_, err := f.svc.Confirm(context.Background(), adoptiontypes.ConfirmAdoptionInput{ID: created.Entity.ID, AdoptedAt: fixedNow})
	requireConflict(t, err, "currentStatus", "REQUESTED")
	require.Equal(t, animaldomain.StatusSheltered, f.animalStatus(t, animalID))
}

func TestCancelAfterConfirmIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.request(t, f.shelter(t, animaldomain.StatusSheltered))
	id := created.Entity.ID

	_, err := f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: id})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: id, AdoptedAt: fixedNow})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, adoptiontypes.CancelAdoptionInput{ID: id})
	requireConflict(t, err, "currentStatus", "CONFIRMED")
}

func TestCreateForUnavailableAnimalIsRejected(t *testing.T) {
	for _, status := range []animaldomain.Status{animaldomain.StatusAdopted, animaldomain.StatusDeceased} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			animalID := f.shelter(t, status)

			_, err := f.svc.Create(context.Background(), adoptiontypes.CreateAdoptionInput{AnimalID: animalID, ApplicantName: "Kim Minji"})
			requireConflict(t, err, "animalStatus", string(status))

			page, err := f.svc.List(context.Background(), adoptiontypes.ListAdoptionsInput{Page: defaultPage()})
			require.NoError(t, err)
			require.Zero(t, page.TotalElements)
		})
	}
}

func TestCreateForTempFosterAnimal(t *testing.T) {
	f := newFixture(t)
	created := f.request(t, f.shelter(t, animaldomain.StatusTempFoster))
	require.Equal(t, domain.StatusRequested, created.Entity.Status)
}

func TestCreateForMissingAnimal(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), adoptiontypes.CreateAdoptionInput{AnimalID: 99, ApplicantName: "Kim Minji"})
	require.ErrorIs(t, err, failure.ErrAnimalNotFound)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), adoptiontypes.CreateAdoptionInput{})
	require.ErrorIs(t, err, failure.ErrValidation)
	fail, _ := failure.As(err)
	require.Contains(t, fail.Details, "animalId")
	require.Contains(t, fail.Details, "applicantName")
}

func TestSecondApproveIsRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.request(t, f.shelter(t, animaldomain.StatusSheltered))
	id := created.Entity.ID

	first, err := f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: id})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: id})
	requireConflict(t, err, "currentStatus", "APPROVED")

	stored, err := f.svc.GetByID(ctx, adoptiontypes.AdoptionIdentifier{ID: id})
	require.NoError(t, err)
	require.Equal(t, first.Entity, stored.Entity)
}

func TestConcurrentApprovalsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	created := f.request(t, f.shelter(t, animaldomain.StatusSheltered))

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(context.Background(), adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, failure.ErrStateConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, succeeded)
	require.Equal(t, callers-1, conflicts)
}

func TestOnlyOneConfirmationPerAnimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	animalID := f.shelter(t, animaldomain.StatusSheltered)
	first := f.request(t, animalID)
	second := f.request(t, animalID)

	for _, id := range []int64{first.Entity.ID, second.Entity.ID} {
		_, err := f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: id})
		require.NoError(t, err)
	}
	_, err := f.svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: first.Entity.ID, AdoptedAt: fixedNow})
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: second.Entity.ID, AdoptedAt: fixedNow})
	requireConflict(t, err, "animalStatus", "ADOPTED")

	stored, err := f.svc.GetByID(ctx, adoptiontypes.AdoptionIdentifier{ID: second.Entity.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, stored.Entity.Status)
	require.Nil(t, stored.Entity.AdoptedAt)
}

type failingUpdateRepo struct {
	*adoptionmemory.Repository
}

func (r failingUpdateRepo) RunInTx(ctx context.Context, fn func(context.Context, ports.Tx) error) error {
	return r.Repository.RunInTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		return fn(ctx, failingUpdateTx{Tx: tx})
	})
}

type failingUpdateTx struct {
	ports.Tx
}

func (failingUpdateTx) UpdateAdoption(context.Context, *domain.Adoption, domain.Status) (*projection.Projection[*domain.Adoption], error) {
	return nil, errors.New("write failed")
}

func TestFailedConfirmLeavesBothEntitiesUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	animalID := f.shelter(t, animaldomain.StatusSheltered)
	created := f.request(t, animalID)
	_, err := f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)

	svc := NewService(failingUpdateRepo{Repository: f.adoptions})
	_, err = svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: created.Entity.ID, AdoptedAt: fixedNow})
	require.EqualError(t, err, "write failed")

	require.Equal(t, animaldomain.StatusSheltered, f.animalStatus(t, animalID))
	stored, err := f.svc.GetByID(ctx, adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, stored.Entity.Status)
}

func TestConfirmRequiresAdoptedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.request(t, f.shelter(t, animaldomain.StatusSheltered))
	_, err := f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: created.Entity.ID})
	require.ErrorIs(t, err, failure.ErrValidation)
}

func TestUnknownAdoption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := adoptiontypes.AdoptionIdentifier{ID: 404}

	_, err := f.svc.GetByID(ctx, missing)
	require.ErrorIs(t, err, failure.ErrNotFound)
	_, err = f.svc.Approve(ctx, missing)
	require.ErrorIs(t, err, failure.ErrNotFound)
	_, err = f.svc.Confirm(ctx, adoptiontypes.ConfirmAdoptionInput{ID: 404, AdoptedAt: fixedNow})
	require.ErrorIs(t, err, failure.ErrNotFound)
	_, err = f.svc.Cancel(ctx, adoptiontypes.CancelAdoptionInput{ID: 404})
	require.ErrorIs(t, err, failure.ErrNotFound)
}

// staleReadRepo serves a stale REQUESTED snapshot while the store already moved on.
type staleReadRepo struct {
	*adoptionmemory.Repository
	stale *projection.Projection[*domain.Adoption]
	once  sync.Once
}

func (r *staleReadRepo) FindByID(ctx context.Context, id int64) (*projection.Projection[*domain.Adoption], error) {
	var stale *projection.Projection[*domain.Adoption]
	r.once.Do(func() { stale = r.stale })
	if stale != nil {
		return stale, nil
	}
	return r.Repository.FindByID(ctx, id)
}

func TestLostRaceReportsFreshStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.request(t, f.shelter(t, animaldomain.StatusSheltered))
	_, err := f.svc.Cancel(ctx, adoptiontypes.CancelAdoptionInput{ID: created.Entity.ID})
	require.NoError(t, err)

	svc := NewService(&staleReadRepo{Repository: f.adoptions, stale: created})
	_, err = svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: created.Entity.ID})
	requireConflict(t, err, "currentStatus", "CANCELED")
	require.ErrorIs(t, err, ports.ErrStatusChanged)
}

func TestIdempotentCreate(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(adoptionmemory.NewIdempotencyStore()))
	ctx := context.Background()
	animalID := f.shelter(t, animaldomain.StatusSheltered)
	input := adoptiontypes.CreateAdoptionInput{AnimalID: animalID, ApplicantName: "Kim Minji", IdempotencyKey: "req-1"}

	first, err := f.svc.Create(ctx, input)
	require.NoError(t, err)
	replayed, err := f.svc.Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.Entity.ID, replayed.Entity.ID)

	input.ApplicantName = "Lee Jihoon"
	_, err = f.svc.Create(ctx, input)
	requireConflict(t, err, "idempotencyKey", "req-1")

	page, err := f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Page: defaultPage()})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
}

// createHookRepo runs hook once, just before the first adoption insert.
type createHookRepo struct {
	ports.Repository
	hook func()
}

func (r *createHookRepo) Create(ctx context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if hook := r.hook; hook != nil {
		r.hook = nil
		hook()
	}
	return r.Repository.Create(ctx, adoption)
}

func TestIdempotentCreateRetryDuringInsertDoesNotInsertTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	animalID := f.shelter(t, animaldomain.StatusSheltered)
	input := adoptiontypes.CreateAdoptionInput{AnimalID: animalID, ApplicantName: "Kim Minji", IdempotencyKey: "req-race"}

	var svc *Service
	repo := &createHookRepo{Repository: f.adoptions}
	repo.hook = func() {
		_, err := svc.Create(ctx, input)
		requireConflict(t, err, "idempotencyKey", "req-race")
		require.ErrorIs(t, err, ports.ErrIdempotencyInFlight)
	}
	svc = NewService(repo, WithClock(func() time.Time { return fixedNow }), WithIdempotencyStore(adoptionmemory.NewIdempotencyStore()))

	first, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.Nil(t, repo.hook)

	replayed, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.Entity.ID, replayed.Entity.ID)

	page, err := svc.List(ctx, adoptiontypes.ListAdoptionsInput{Page: defaultPage()})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
}

func TestIdempotentCreateReleasesKeyOnFailure(t *testing.T) {
	store := adoptionmemory.NewIdempotencyStore()
	f := newFixture(t, WithIdempotencyStore(store))
	ctx := context.Background()
	adopted := f.shelter(t, animaldomain.StatusAdopted)

	_, err := f.svc.Create(ctx, adoptiontypes.CreateAdoptionInput{AnimalID: adopted, ApplicantName: "Kim Minji", IdempotencyKey: "req-fail"})
	requireConflict(t, err, "animalStatus", "ADOPTED")

	record, err := store.Get(ctx, "req-fail")
	require.NoError(t, err)
	require.Nil(t, record)

	_, err = f.svc.Create(ctx, adoptiontypes.CreateAdoptionInput{AnimalID: 999, ApplicantName: "Kim Minji", IdempotencyKey: "req-missing"})
	require.ErrorIs(t, err, failure.ErrAnimalNotFound)
	record, err = store.Get(ctx, "req-missing")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestIdempotentCreateTakesOverStaleReservation(t *testing.T) {
	store := adoptionmemory.NewIdempotencyStore()
	f := newFixture(t, WithIdempotencyStore(store))
	ctx := context.Background()
	animalID := f.shelter(t, animaldomain.StatusSheltered)
	input := adoptiontypes.CreateAdoptionInput{AnimalID: animalID, ApplicantName: "Kim Minji", IdempotencyKey: "req-stale"}
	fingerprint, err := FingerprintCreateAdoption(input)
	require.NoError(t, err)

	store.WithClock(func() time.Time { return fixedNow })
	existing, err := store.Reserve(ctx, "req-stale", fingerprint, time.Time{})
	require.NoError(t, err)
	require.Nil(t, existing)

	_, err = f.svc.Create(ctx, input)
	require.ErrorIs(t, err, ports.ErrIdempotencyInFlight)

	store.WithClock(func() time.Time { return fixedNow.Add(-time.Minute) })
	require.NoError(t, store.Release(ctx, "req-stale"))
	_, err = store.Reserve(ctx, "req-stale", fingerprint, time.Time{})
	require.NoError(t, err)
	store.WithClock(func() time.Time { return fixedNow })

	created, err := f.svc.Create(ctx, input)
	require.NoError(t, err)
	record, err := store.Get(ctx, "req-stale")
	require.NoError(t, err)
	require.Equal(t, created.Entity.ID, record.AdoptionID)
	require.False(t, record.Pending())
}

func TestListFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dog := f.shelter(t, animaldomain.StatusSheltered)
	cat := f.shelter(t, animaldomain.StatusSheltered)

	f.request(t, dog)
	second, err := f.svc.Create(ctx, adoptiontypes.CreateAdoptionInput{AnimalID: cat, ApplicantName: "Park Seoyeon"})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, adoptiontypes.AdoptionIdentifier{ID: second.Entity.ID})
	require.NoError(t, err)

	approved := "APPROVED"
	page, err := f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Status: &approved, Page: defaultPage()})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, second.Entity.ID, page.Content[0].Entity.ID)

	keyword := "minji"
	page, err = f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Keyword: &keyword, Page: defaultPage()})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, dog, page.Content[0].Entity.AnimalID)

	page, err = f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{AnimalID: &cat, Page: defaultPage()})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	require.Equal(t, 1, page.TotalPages)
	require.Equal(t, "requestedAt,DESC", page.Sort)

	bogus := "RETURNED"
	_, err = f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Status: &bogus, Page: defaultPage()})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
}

func defaultPage() query.Request {
	return query.Request{Size: query.DefaultSize, Sort: query.Sort{Field: "requestedAt", Direction: query.Desc}}
}
