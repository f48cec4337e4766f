package ports

import (
	"context"

	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
)

// DonationStats is the read model over recorded donations.
type DonationStats interface {
	// Daily returns one row per day with donations, oldest first.
	Daily(ctx context.Context, r statstypes.Range) ([]statstypes.DailyTotal, error)
	// Monthly returns one row per month with donations, oldest first.
	Monthly(ctx context.Context, r statstypes.Range) ([]statstypes.MonthlyTotal, error)
	// TopDonors ranks donor names by total amount, highest first, ties by name.
	TopDonors(ctx context.Context, r statstypes.Range, limit int) ([]statstypes.DonorTotal, error)
}
