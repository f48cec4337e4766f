package mapper

import statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"

type DailyTotal struct {
	Day           string `json:"day"`
	TotalAmount   int64  `json:"totalAmount"`
	DonationCount int64  `json:"donationCount"`
}

type MonthlyTotal struct {
	Month         string `json:"month"`
	TotalAmount   int64  `json:"totalAmount"`
	DonationCount int64  `json:"donationCount"`
}

type DonorTotal struct {
	DonorName     string `json:"donorName"`
	TotalAmount   int64  `json:"totalAmount"`
	DonationCount int64  `json:"donationCount"`
}

// FromDaily renders days as YYYY-MM-DD.
func FromDaily(rows []statstypes.DailyTotal) []DailyTotal {
	out := make([]DailyTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailyTotal{Day: r.Day.Format("2006-01-02"), TotalAmount: r.TotalAmount, DonationCount: r.DonationCount})
	}
	return out
}

func FromMonthly(rows []statstypes.MonthlyTotal) []MonthlyTotal {
	out := make([]MonthlyTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, MonthlyTotal(r))
	}
	return out
}

func FromDonors(rows []statstypes.DonorTotal) []DonorTotal {
	out := make([]DonorTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, DonorTotal(r))
	}
	return out
}
