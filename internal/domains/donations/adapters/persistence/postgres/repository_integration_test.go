//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/shelter-api/internal/domains/donations/domain"
	"github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/platform/postgres/postgrestest"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

func newDonation(t *testing.T, name string, amount int64, donatedAt time.Time, receipt bool) *domain.Donation {
	t.Helper()
	donation, err := domain.NewDonation(name, "010-0000-0000", amount, donatedAt, receipt, "")
	require.NoError(t, err)
	return donation
}

func TestRepository_CRUD(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Create(ctx, newDonation(t, "Park", 50000, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false))
	require.NoError(t, err)
	require.NotZero(t, saved.Entity.ID)

	donation := saved.Entity
	donation.IssueReceipt(true)
	require.NoError(t, donation.ChangeAmount(70000))
	updated, err := repo.Update(ctx, donation)
	require.NoError(t, err)
	assert.True(t, updated.Entity.ReceiptIssued)
	assert.EqualValues(t, 70000, updated.Entity.Amount)

	found, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Park", found.Entity.DonorName)

	require.NoError(t, repo.Delete(ctx, saved.Entity.ID))
	_, err = repo.GetByID(ctx, saved.Entity.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, saved.Entity.ID), ports.ErrNotFound)

	donation.ID = 9999
	_, err = repo.Update(ctx, donation)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_AmountCheckConstraint(t *testing.T) {
	db := postgrestest.Start(t)

	err := db.Exec(`INSERT INTO donations (donor_name, amount, donated_at, created_at, updated_at) VALUES ('Park', 0, now(), now(), now())`).Error
	require.Error(t, err)
}

func TestRepository_ListFilters(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fixtures := []struct {
		name    string
		amount  int64
		receipt bool
	}{
		{"Park", 10000, true},
		{"Choi", 30000, false},
		{"Park Jisoo", 50000, false},
	}
	for i, f := range fixtures {
		_, err := repo.Create(ctx, newDonation(t, f.name, f.amount, base.AddDate(0, 0, i), f.receipt))
		require.NoError(t, err)
	}
	all := query.Request{Size: 10, Sort: ports.DefaultSort}

	keyword := "park"
	items, total, err := repo.List(ctx, ports.ListFilter{Keyword: &keyword}, all)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Park Jisoo", items[0].Entity.DonorName)

	issued := true
	_, total, err = repo.List(ctx, ports.ListFilter{ReceiptIssued: &issued}, all)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	minAmount, maxAmount := int64(20000), int64(40000)
	items, total, err = repo.List(ctx, ports.ListFilter{MinAmount: &minAmount, MaxAmount: &maxAmount}, all)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Choi", items[0].Entity.DonorName)

	to := base
	_, total, err = repo.List(ctx, ports.ListFilter{DonatedTo: &to}, all)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	items, total, err = repo.List(ctx, ports.ListFilter{}, query.Request{Page: 1, Size: 2, Sort: query.Sort{Field: "amount", Direction: query.Asc}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.EqualValues(t, 50000, items[0].Entity.Amount)
}
