package application

import (
	"context"
	"strconv"

	types "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	"github.com/Apurer/shelter-api/internal/domains/stats/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const (
	DefaultTopDonors = 10
	MaxTopDonors     = 50
)

// Service validates report parameters and delegates to the read model.
type Service struct {
	stats ports.DonationStats
}

func NewService(stats ports.DonationStats) *Service {
	return &Service{stats: stats}
}

func (s *Service) DonationsDaily(ctx context.Context, input types.Range) ([]types.DailyTotal, error) {
	if err := checkRange(input); err != nil {
		return nil, err
	}
	return s.stats.Daily(ctx, input)
}

func (s *Service) DonationsMonthly(ctx context.Context, input types.Range) ([]types.MonthlyTotal, error) {
	if err := checkRange(input); err != nil {
		return nil, err
	}
	return s.stats.Monthly(ctx, input)
}

func (s *Service) TopDonors(ctx context.Context, input types.TopDonorsInput) ([]types.DonorTotal, error) {
	if err := checkRange(input.Range); err != nil {
		return nil, err
	}
	limit := int64(DefaultTopDonors)
	if input.Limit != nil {
		limit = *input.Limit
	}
	if limit < 1 || limit > MaxTopDonors {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{
			"limit": "limit must be between 1 and " + strconv.Itoa(MaxTopDonors),
		})
	}
	return s.stats.TopDonors(ctx, input.Range, int(limit))
}

func checkRange(r types.Range) error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return failure.InvalidQuery("invalid query parameter", map[string]string{"from": "from must be <= to"})
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
