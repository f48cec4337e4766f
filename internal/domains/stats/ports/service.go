package ports

import (
	"context"

	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
)

// Service exposes donation reporting (inbound/driving port).
type Service interface {
	DonationsDaily(ctx context.Context, input statstypes.Range) ([]statstypes.DailyTotal, error)
	DonationsMonthly(ctx context.Context, input statstypes.Range) ([]statstypes.MonthlyTotal, error)
	TopDonors(ctx context.Context, input statstypes.TopDonorsInput) ([]statstypes.DonorTotal, error)
}
