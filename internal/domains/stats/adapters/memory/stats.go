package memory

import (
	"context"
	"sort"
	"time"

	donationdomain "github.com/Apurer/shelter-api/internal/domains/donations/domain"
	donationports "github.com/Apurer/shelter-api/internal/domains/donations/ports"
	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	"github.com/Apurer/shelter-api/internal/domains/stats/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

var _ ports.DonationStats = (*Stats)(nil)

// Stats aggregates donations read through the donation repository.
type Stats struct {
	donations donationports.Repository
}

func NewStats(donations donationports.Repository) *Stats {
	return &Stats{donations: donations}
}

func (s *Stats) Daily(ctx context.Context, r statstypes.Range) ([]statstypes.DailyTotal, error) {
	rows := map[time.Time]*statstypes.DailyTotal{}
	err := s.each(ctx, r, func(d *donationdomain.Donation) {
		at := d.DonatedAt.UTC()
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		row, ok := rows[day]
		if !ok {
			row = &statstypes.DailyTotal{Day: day}
			rows[day] = row
		}
		row.TotalAmount += d.Amount
		row.DonationCount++
	})
	if err != nil {
		return nil, err
	}
	out := make([]statstypes.DailyTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *Stats) Monthly(ctx context.Context, r statstypes.Range) ([]statstypes.MonthlyTotal, error) {
	rows := map[string]*statstypes.MonthlyTotal{}
	err := s.each(ctx, r, func(d *donationdomain.Donation) {
		month := d.DonatedAt.UTC().Format("2006-01")
		row, ok := rows[month]
		if !ok {
			row = &statstypes.MonthlyTotal{Month: month}
			rows[month] = row
		}
		row.TotalAmount += d.Amount
		row.DonationCount++
	})
	if err != nil {
		return nil, err
	}
	out := make([]statstypes.MonthlyTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *Stats) TopDonors(ctx context.Context, r statstypes.Range, limit int) ([]statstypes.DonorTotal, error) {
	rows := map[string]*statstypes.DonorTotal{}
	err := s.each(ctx, r, func(d *donationdomain.Donation) {
		row, ok := rows[d.DonorName]
		if !ok {
			row = &statstypes.DonorTotal{DonorName: d.DonorName}
			rows[d.DonorName] = row
		}
		row.TotalAmount += d.Amount
		row.DonationCount++
	})
	if err != nil {
		return nil, err
	}
	out := make([]statstypes.DonorTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].DonorName < out[j].DonorName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// each walks every donation in range, one full page at a time.
func (s *Stats) each(ctx context.Context, r statstypes.Range, fn func(*donationdomain.Donation)) error {
	filter := donationports.ListFilter{DonatedFrom: r.From, DonatedTo: r.To}
	req := query.Request{Size: query.MaxSize, Sort: query.Sort{Field: "donatedAt", Direction: query.Asc}}
	var seen int64
	for {
		items, total, err := s.donations.List(ctx, filter, req)
		if err != nil {
			return err
		}
		for _, item := range items {
			fn(item.Entity)
		}
		seen += int64(len(items))
		if len(items) == 0 || seen >= total {
			return nil
		}
		req.Page++
	}
}
