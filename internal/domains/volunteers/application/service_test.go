package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	volunteermemory "github.com/Apurer/shelter-api/internal/domains/volunteers/adapters/memory"
	volunteertypes "github.com/Apurer/shelter-api/internal/domains/volunteers/application/types"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newService() *Service {
	return NewService(volunteermemory.NewRepository(), WithClock(func() time.Time { return fixedNow }))
}

func seed(t *testing.T, svc *Service, name string) *volunteertypes.VolunteerProjection {
	t.Helper()
	created, err := svc.Create(context.Background(), volunteertypes.CreateVolunteerInput{Name: name})
	require.NoError(t, err)
	return created
}

func TestCreateDefaultsJoinedAtAndPending(t *testing.T) {
	svc := newService()
	created := seed(t, svc, "Kim Haneul")
	assert.Equal(t, domain.StatusPending, created.Entity.Status)
	assert.True(t, fixedNow.Equal(created.Entity.JoinedAt))

	joined := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)
	explicit, err := svc.Create(context.Background(), volunteertypes.CreateVolunteerInput{Name: "Oh Sea", JoinedAt: &joined})
	require.NoError(t, err)
	assert.True(t, joined.Equal(explicit.Entity.JoinedAt))
}

func TestCreateValidation(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), volunteertypes.CreateVolunteerInput{Name: " ", Email: strings.Repeat("e", domain.MaxEmailLength+1)})
	require.ErrorIs(t, err, failure.ErrValidation)
	f, _ := failure.As(err)
	assert.Contains(t, f.Details, "name")
	assert.Contains(t, f.Details, "email")
}

func TestUpdateLeavesStatusAlone(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	created := seed(t, svc, "Kim Haneul")
	_, err := svc.Approve(ctx, volunteertypes.VolunteerIdentifier{ID: created.Entity.ID})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, volunteertypes.UpdateVolunteerInput{ID: created.Entity.ID, Phone: ptr("010-9999-0000")})
	require.NoError(t, err)
	assert.Equal(t, "010-9999-0000", updated.Entity.Phone)
	assert.Equal(t, "Kim Haneul", updated.Entity.Name)
	assert.Equal(t, domain.StatusApproved, updated.Entity.Status)

	_, err = svc.Update(ctx, volunteertypes.UpdateVolunteerInput{ID: created.Entity.ID, Name: ptr("")})
	require.ErrorIs(t, err, failure.ErrValidation)
	_, err = svc.Update(ctx, volunteertypes.UpdateVolunteerInput{ID: 404, Name: ptr("x")})
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestLifecycle(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	id := volunteertypes.VolunteerIdentifier{ID: seed(t, svc, "Kim Haneul").Entity.ID}

	_, err := svc.Suspend(ctx, id)
	requireConflict(t, err, domain.StatusPending)
	_, err = svc.Reinstate(ctx, id)
	requireConflict(t, err, domain.StatusPending)

	approved, err := svc.Approve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Entity.Status)
	_, err = svc.Approve(ctx, id)
	requireConflict(t, err, domain.StatusApproved)

	suspended, err := svc.Suspend(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, suspended.Entity.Status)

	reinstated, err := svc.Reinstate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, reinstated.Entity.Status)

	_, err = svc.Approve(ctx, volunteertypes.VolunteerIdentifier{ID: 404})
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func requireConflict(t *testing.T, err error, current domain.Status) {
	t.Helper()
	require.ErrorIs(t, err, failure.ErrStateConflict)
	f, ok := failure.As(err)
	require.True(t, ok)
	assert.Equal(t, string(current), f.Details["currentStatus"])
}

// racingRepo flips the stored status between the read and the conditional write.
type racingRepo struct {
	*volunteermemory.Repository
	once bool
}

func (r *racingRepo) UpdateStatus(ctx context.Context, id int64, expected, next domain.Status) (*projection.Projection[*domain.Volunteer], error) {
	if !r.once {
		r.once = true
		if _, err := r.Repository.UpdateStatus(ctx, id, expected, domain.StatusApproved); err != nil {
			return nil, err
		}
	}
	return r.Repository.UpdateStatus(ctx, id, expected, next)
}

func TestConcurrentTransitionReportsFreshStatus(t *testing.T) {
	repo := &racingRepo{Repository: volunteermemory.NewRepository()}
	svc := NewService(repo)
	created := seed(t, svc, "Kim Haneul")

	_, err := svc.Approve(context.Background(), volunteertypes.VolunteerIdentifier{ID: created.Entity.ID})
	require.ErrorIs(t, err, ports.ErrStatusChanged)
	requireConflict(t, err, domain.StatusApproved)
}

func TestListFiltersAndSorts(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	a := seed(t, svc, "Choi Yujin")
	seed(t, svc, "Jung Minsu")
	seed(t, svc, "Hong Jisu")
	_, err := svc.Approve(ctx, volunteertypes.VolunteerIdentifier{ID: a.Entity.ID})
	require.NoError(t, err)

	page, err := svc.List(ctx, volunteertypes.ListVolunteersInput{
		Status: ptr(domain.StatusPending),
		Page:   query.Request{Size: 20, Sort: query.Sort{Field: "name", Direction: query.Asc}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.TotalElements)
	assert.Equal(t, "Hong Jisu", page.Content[0].Entity.Name)

	page, err = svc.List(ctx, volunteertypes.ListVolunteersInput{Keyword: ptr("yujin"), Page: query.Request{Size: 20, Sort: ports.DefaultSort}})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalElements)

	_, err = svc.List(ctx, volunteertypes.ListVolunteersInput{Status: ptr(domain.Status("RETIRED")), Page: query.Request{Size: 20}})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
}

func TestCountByStatusIncludesEmptyStatuses(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	a := seed(t, svc, "Choi Yujin")
	seed(t, svc, "Jung Minsu")
	_, err := svc.Approve(ctx, volunteertypes.VolunteerIdentifier{ID: a.Entity.ID})
	require.NoError(t, err)

	counts, err := svc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []volunteertypes.StatusCount{
		{Status: domain.StatusPending, Count: 1},
		{Status: domain.StatusApproved, Count: 1},
		{Status: domain.StatusSuspended, Count: 0},
	}, counts)
}

func TestDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	created := seed(t, svc, "Kim Haneul")
	require.NoError(t, svc.Delete(ctx, volunteertypes.VolunteerIdentifier{ID: created.Entity.ID}))
	require.ErrorIs(t, svc.Delete(ctx, volunteertypes.VolunteerIdentifier{ID: created.Entity.ID}), failure.ErrNotFound)
}
