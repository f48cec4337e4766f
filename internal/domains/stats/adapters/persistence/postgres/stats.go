package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	"github.com/Apurer/shelter-api/internal/domains/stats/ports"
)

var _ ports.DonationStats = (*Stats)(nil)

// Stats runs donation aggregates directly against the donations table.
type Stats struct {
	db *gorm.DB
}

func NewStats(db *gorm.DB) *Stats {
	return &Stats{db: db}
}

type dailyRow struct {
	Day           time.Time
	TotalAmount   int64
	DonationCount int64
}

type monthlyRow struct {
	Month         string
	TotalAmount   int64
	DonationCount int64
}

type donorRow struct {
	DonorName     string
	TotalAmount   int64
	DonationCount int64
}

func (s *Stats) Daily(ctx context.Context, r statstypes.Range) ([]statstypes.DailyTotal, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []dailyRow
	err := s.donations(ctx, r).
		Select("date_trunc('day', donated_at AT TIME ZONE 'UTC') AS day, SUM(amount) AS total_amount, COUNT(*) AS donation_count").
		Group("1").
		Order("1 ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]statstypes.DailyTotal, 0, len(rows))
	for _, row := range rows {
		day := row.Day
		out = append(out, statstypes.DailyTotal{
			Day:           time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			TotalAmount:   row.TotalAmount,
			DonationCount: row.DonationCount,
		})
	}
	return out, nil
}

func (s *Stats) Monthly(ctx context.Context, r statstypes.Range) ([]statstypes.MonthlyTotal, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []monthlyRow
	err := s.donations(ctx, r).
		Select("to_char(donated_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, SUM(amount) AS total_amount, COUNT(*) AS donation_count").
		Group("1").
		Order("1 ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]statstypes.MonthlyTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, statstypes.MonthlyTotal(row))
	}
	return out, nil
}

func (s *Stats) TopDonors(ctx context.Context, r statstypes.Range, limit int) ([]statstypes.DonorTotal, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []donorRow
	err := s.donations(ctx, r).
		Select("donor_name, SUM(amount) AS total_amount, COUNT(*) AS donation_count").
		Group("donor_name").
		Order("total_amount DESC, donor_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]statstypes.DonorTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, statstypes.DonorTotal(row))
	}
	return out, nil
}

func (s *Stats) donations(ctx context.Context, r statstypes.Range) *gorm.DB {
	db := s.db.WithContext(ctx).Table("donations")
	if r.From != nil {
		db = db.Where("donated_at >= ?", *r.From)
	}
	if r.To != nil {
		db = db.Where("donated_at <= ?", *r.To)
	}
	return db
}

func (s *Stats) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("stats database not configured")
	}
	return nil
}
