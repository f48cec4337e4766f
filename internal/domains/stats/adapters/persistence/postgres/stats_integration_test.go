//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donationpostgres "github.com/Apurer/shelter-api/internal/domains/donations/adapters/persistence/postgres"
	donationdomain "github.com/Apurer/shelter-api/internal/domains/donations/domain"
	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	"github.com/Apurer/shelter-api/internal/platform/postgres/postgrestest"
)

func TestStats_Aggregates(t *testing.T) {
	db := postgrestest.Start(t)
	donations := donationpostgres.NewRepository(db)
	stats := NewStats(db)
	ctx := context.Background()

	seed := func(donor string, amount int64, at time.Time) {
		d, err := donationdomain.NewDonation(donor, "", amount, at, false, "")
		require.NoError(t, err)
		_, err = donations.Create(ctx, d)
		require.NoError(t, err)
	}
	seed("Kim", 10000, time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC))
	seed("Lee", 5000, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	seed("Kim", 20000, time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC))
	seed("Park", 30000, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	daily, err := stats.Daily(ctx, statstypes.Range{})
	require.NoError(t, err)
	require.Len(t, daily, 3)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), daily[1].Day)
	assert.EqualValues(t, 25000, daily[1].TotalAmount)
	assert.EqualValues(t, 2, daily[1].DonationCount)

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	monthly, err := stats.Monthly(ctx, statstypes.Range{From: &from})
	require.NoError(t, err)
	assert.Equal(t, []statstypes.MonthlyTotal{
		{Month: "2024-02", TotalAmount: 25000, DonationCount: 2},
		{Month: "2024-03", TotalAmount: 30000, DonationCount: 1},
	}, monthly)

	top, err := stats.TopDonors(ctx, statstypes.Range{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []statstypes.DonorTotal{
		{DonorName: "Kim", TotalAmount: 30000, DonationCount: 2},
		{DonorName: "Park", TotalAmount: 30000, DonationCount: 1},
	}, top)
}
