package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	animalports "github.com/Apurer/shelter-api/internal/domains/animals/ports"
	medicalmemory "github.com/Apurer/shelter-api/internal/domains/medical/adapters/memory"
	medicaltypes "github.com/Apurer/shelter-api/internal/domains/medical/application/types"
	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	animals *animalmemory.Repository
	svc     *Service
}

func newFixture() *fixture {
	animals := animalmemory.NewRepository()
	return &fixture{animals: animals, svc: NewService(medicalmemory.NewRepository(animals))}
}

func (f *fixture) animal(t *testing.T) int64 {
	t.Helper()
	animal, err := animaldomain.NewAnimal(animaldomain.Attributes{
		Name:       "Nabi",
		Species:    "CAT",
		IntakeDate: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		Status:     animaldomain.StatusSheltered,
	})
	require.NoError(t, err)
	saved, err := f.animals.Create(context.Background(), animal)
	require.NoError(t, err)
	return saved.Entity.ID
}

func (f *fixture) record(t *testing.T, animalID int64, typ domain.Type, day int, cost *int64) *medicaltypes.RecordProjection {
	t.Helper()
	created, err := f.svc.Create(context.Background(), medicaltypes.CreateRecordInput{
		AnimalID:    animalID,
		Type:        typ,
		PerformedAt: time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC),
		Cost:        cost,
	})
	require.NoError(t, err)
	return created
}

func TestCreateRequiresExistingAnimal(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), medicaltypes.CreateRecordInput{
		AnimalID:    404,
		Type:        domain.TypeVaccine,
		PerformedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, failure.ErrAnimalNotFound)
	fe, ok := failure.As(err)
	require.True(t, ok)
	assert.EqualValues(t, 404, fe.Details["animalId"])
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), medicaltypes.CreateRecordInput{AnimalID: f.animal(t), Cost: ptr[int64](-5)})
	require.ErrorIs(t, err, failure.ErrValidation)
	fe, _ := failure.As(err)
	assert.Contains(t, fe.Details, "type")
	assert.Contains(t, fe.Details, "performedAt")
	assert.Contains(t, fe.Details, "cost")
}

func TestUpdateIsPartial(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.record(t, f.animal(t), domain.TypeTreatment, 1, ptr[int64](20000))

	updated, err := f.svc.Update(ctx, medicaltypes.UpdateRecordInput{ID: created.Entity.ID, Description: ptr("antibiotics")})
	require.NoError(t, err)
	assert.Equal(t, "antibiotics", updated.Entity.Description)
	assert.Equal(t, domain.TypeTreatment, updated.Entity.Type)
	require.NotNil(t, updated.Entity.Cost)
	assert.EqualValues(t, 20000, *updated.Entity.Cost)

	_, err = f.svc.Update(ctx, medicaltypes.UpdateRecordInput{ID: created.Entity.ID, Type: ptr(domain.Type("GROOMING"))})
	require.ErrorIs(t, err, failure.ErrValidation)
	_, err = f.svc.Update(ctx, medicaltypes.UpdateRecordInput{ID: 404, Description: ptr("x")})
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestDeleteAndMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.record(t, f.animal(t), domain.TypeVaccine, 1, nil)

	require.NoError(t, f.svc.Delete(ctx, medicaltypes.RecordIdentifier{ID: created.Entity.ID}))
	_, err := f.svc.GetByID(ctx, medicaltypes.RecordIdentifier{ID: created.Entity.ID})
	require.ErrorIs(t, err, failure.ErrNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, medicaltypes.RecordIdentifier{ID: created.Entity.ID}), failure.ErrNotFound)
}

func TestRecordsPinTheAnimal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	animalID := f.animal(t)
	created := f.record(t, animalID, domain.TypeVaccine, 1, nil)

	require.ErrorIs(t, f.animals.Delete(ctx, animalID), animalports.ErrReferenced)
	require.NoError(t, f.svc.Delete(ctx, medicaltypes.RecordIdentifier{ID: created.Entity.ID}))
	require.NoError(t, f.animals.Delete(ctx, animalID))
}

func TestListPerAnimalAndFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	nabi, other := f.animal(t), f.animal(t)
	f.record(t, nabi, domain.TypeVaccine, 1, ptr[int64](15000))
	f.record(t, nabi, domain.TypeTreatment, 5, nil)
	f.record(t, nabi, domain.TypeSurgery, 9, ptr[int64](300000))
	f.record(t, other, domain.TypeVaccine, 3, nil)

	page, err := f.svc.List(ctx, medicaltypes.ListRecordsInput{AnimalID: &nabi, Page: query.Request{Size: 20, Sort: query.Sort{Field: "performedAt", Direction: query.Desc}}})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, domain.TypeSurgery, page.Content[0].Entity.Type)

	page, err = f.svc.List(ctx, medicaltypes.ListRecordsInput{Type: ptr(domain.TypeVaccine), Page: query.Request{Size: 20}})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.TotalElements)

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	page, err = f.svc.List(ctx, medicaltypes.ListRecordsInput{From: &from, To: &to, Page: query.Request{Size: 20}})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.TotalElements)

	page, err = f.svc.List(ctx, medicaltypes.ListRecordsInput{AnimalID: &nabi, Page: query.Request{Size: 20, Sort: query.Sort{Field: "cost", Direction: query.Asc}}})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeVaccine, page.Content[0].Entity.Type)
	assert.Nil(t, page.Content[2].Entity.Cost)

	_, err = f.svc.List(ctx, medicaltypes.ListRecordsInput{AnimalID: ptr[int64](404), Page: query.Request{Size: 20}})
	require.ErrorIs(t, err, failure.ErrAnimalNotFound)
	_, err = f.svc.List(ctx, medicaltypes.ListRecordsInput{Type: ptr(domain.Type("GROOMING")), Page: query.Request{Size: 20}})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
	_, err = f.svc.List(ctx, medicaltypes.ListRecordsInput{From: &to, To: &from, Page: query.Request{Size: 20}})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
}

func TestRecentSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	nabi := f.animal(t)
	for day := 1; day <= 7; day++ {
		f.record(t, nabi, domain.TypeTreatment, day, nil)
	}

	recent, err := f.svc.RecentSummary(ctx, medicaltypes.RecentSummaryInput{AnimalID: nabi})
	require.NoError(t, err)
	require.Len(t, recent, DefaultSummaryLimit)
	assert.Equal(t, 7, recent[0].Entity.PerformedAt.Day())
	assert.Equal(t, 3, recent[4].Entity.PerformedAt.Day())

	recent, err = f.svc.RecentSummary(ctx, medicaltypes.RecentSummaryInput{AnimalID: nabi, Limit: ptr[int64](2)})
	require.NoError(t, err)
	require.Len(t, recent, 2)

	_, err = f.svc.RecentSummary(ctx, medicaltypes.RecentSummaryInput{AnimalID: nabi, Limit: ptr[int64](MaxSummaryLimit + 1)})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
	_, err = f.svc.RecentSummary(ctx, medicaltypes.RecentSummaryInput{AnimalID: nabi, Limit: ptr[int64](0)})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
	_, err = f.svc.RecentSummary(ctx, medicaltypes.RecentSummaryInput{AnimalID: 404})
	require.ErrorIs(t, err, failure.ErrAnimalNotFound)
}
