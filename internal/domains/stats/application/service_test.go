package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donationmemory "github.com/Apurer/shelter-api/internal/domains/donations/adapters/memory"
	donationdomain "github.com/Apurer/shelter-api/internal/domains/donations/domain"
	statsmemory "github.com/Apurer/shelter-api/internal/domains/stats/adapters/memory"
	types "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, repo *donationmemory.Repository, donor string, amount int64, at time.Time) {
	t.Helper()
	donation, err := donationdomain.NewDonation(donor, "", amount, at, false, "")
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), donation)
	require.NoError(t, err)
}

func newSeededService(t *testing.T) *Service {
	t.Helper()
	repo := donationmemory.NewRepository()
	seed(t, repo, "Kim", 10000, time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC))
	seed(t, repo, "Lee", 5000, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	seed(t, repo, "Kim", 20000, time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC))
	seed(t, repo, "Park", 30000, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	return NewService(statsmemory.NewStats(repo))
}

func TestDonationsDaily(t *testing.T) {
	svc := newSeededService(t)

	rows, err := svc.DonationsDaily(context.Background(), types.Range{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), rows[0].Day)
	assert.Equal(t, types.DailyTotal{Day: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), TotalAmount: 25000, DonationCount: 2}, rows[1])

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	rows, err = svc.DonationsDaily(context.Background(), types.Range{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].DonationCount)
}

func TestDonationsMonthly(t *testing.T) {
	svc := newSeededService(t)

	rows, err := svc.DonationsMonthly(context.Background(), types.Range{})
	require.NoError(t, err)
	assert.Equal(t, []types.MonthlyTotal{
		{Month: "2024-01", TotalAmount: 10000, DonationCount: 1},
		{Month: "2024-02", TotalAmount: 25000, DonationCount: 2},
		{Month: "2024-03", TotalAmount: 30000, DonationCount: 1},
	}, rows)
}

func TestTopDonors(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	rows, err := svc.TopDonors(ctx, types.TopDonorsInput{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, types.DonorTotal{DonorName: "Kim", TotalAmount: 30000, DonationCount: 2}, rows[0])
	assert.Equal(t, "Park", rows[1].DonorName)

	rows, err = svc.TopDonors(ctx, types.TopDonorsInput{Limit: ptr[int64](1)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kim", rows[0].DonorName)

	_, err = svc.TopDonors(ctx, types.TopDonorsInput{Limit: ptr[int64](MaxTopDonors + 1)})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
	_, err = svc.TopDonors(ctx, types.TopDonorsInput{Limit: ptr[int64](0)})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
}

func TestRangeMustBeOrdered(t *testing.T) {
	svc := newSeededService(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.DonationsDaily(context.Background(), types.Range{From: &from, To: &to})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
	fe, ok := failure.As(err)
	require.True(t, ok)
	assert.Contains(t, fe.Details, "from")
	_, err = svc.DonationsMonthly(context.Background(), types.Range{From: &from, To: &to})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
	_, err = svc.TopDonors(context.Background(), types.TopDonorsInput{Range: types.Range{From: &from, To: &to}})
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
}

func TestAggregatesSpanManyPages(t *testing.T) {
	repo := donationmemory.NewRepository()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		seed(t, repo, "Choi", 1000, start.Add(time.Duration(i)*time.Hour))
	}
	svc := NewService(statsmemory.NewStats(repo))

	rows, err := svc.DonationsMonthly(context.Background(), types.Range{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 120, rows[0].DonationCount)
	assert.EqualValues(t, 120000, rows[0].TotalAmount)
}
