//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/platform/postgres/postgrestest"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

func newAnimal(t *testing.T, name, species string, intake time.Time) *domain.Animal {
	t.Helper()
	animal, err := domain.NewAnimal(domain.Attributes{Name: name, Species: species, Breed: "mixed", IntakeDate: intake})
	require.NoError(t, err)
	return animal
}

func TestRepository_CreateGetAndConditionalUpdate(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Create(ctx, newAnimal(t, "Bori", "DOG", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.NotZero(t, saved.Entity.ID)
	assert.Equal(t, domain.StatusSheltered, saved.Entity.Status)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	animal := saved.Entity.Clone()
	require.NoError(t, animal.ChangeStatus(domain.StatusTempFoster))
	updated, err := repo.Update(ctx, animal, domain.StatusSheltered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTempFoster, updated.Entity.Status)

	_, err = repo.Update(ctx, animal, domain.StatusSheltered)
	require.ErrorIs(t, err, ports.ErrStatusChanged)

	missing := animal.Clone()
	missing.ID = 9999
	_, err = repo.Update(ctx, missing, domain.StatusSheltered)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteRejectsReferencedAnimal(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	referenced, err := repo.Create(ctx, newAnimal(t, "Bori", "DOG", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		`INSERT INTO adoptions (animal_id, applicant_name, status, requested_at, created_at, updated_at) VALUES (?, 'Kim', 'REQUESTED', now(), now(), now())`,
		referenced.Entity.ID,
	).Error)

	require.ErrorIs(t, repo.Delete(ctx, referenced.Entity.ID), ports.ErrReferenced)

	free, err := repo.Create(ctx, newAnimal(t, "Nabi", "CAT", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, free.Entity.ID))
	require.ErrorIs(t, repo.Delete(ctx, free.Entity.ID), ports.ErrNotFound)
}

func TestRepository_ListFiltersAndPages(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, fixture := range []struct{ name, species string }{{"Bori", "DOG"}, {"Nabi", "CAT"}, {"Choco", "DOG"}} {
		_, err := repo.Create(ctx, newAnimal(t, fixture.name, fixture.species, base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	dog := "DOG"
	items, total, err := repo.List(ctx, ports.ListFilter{Species: &dog}, query.Request{
		Page: 0, Size: 1, Sort: query.Sort{Field: "intakeDate", Direction: query.Asc},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Bori", items[0].Entity.Name)

	keyword := "nab"
	items, total, err = repo.List(ctx, ports.ListFilter{Keyword: &keyword}, query.Request{Size: 10, Sort: ports.DefaultSort})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Nabi", items[0].Entity.Name)

	from := base.AddDate(0, 0, 1)
	_, total, err = repo.List(ctx, ports.ListFilter{IntakeFrom: &from}, query.Request{Size: 10, Sort: ports.DefaultSort})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
