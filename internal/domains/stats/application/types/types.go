package types

import "time"

// Range bounds donatedAt inclusively. Nil ends are open.
type Range struct {
	From *time.Time
	To   *time.Time
}

type TopDonorsInput struct {
	Range
	// Limit defaults to 10 when nil.
	Limit *int64
}

// DailyTotal aggregates one UTC calendar day.
type DailyTotal struct {
	Day           time.Time
	TotalAmount   int64
	DonationCount int64
}

// MonthlyTotal aggregates one UTC calendar month, keyed "YYYY-MM".
type MonthlyTotal struct {
	Month         string
	TotalAmount   int64
	DonationCount int64
}

type DonorTotal struct {
	DonorName     string
	TotalAmount   int64
	DonationCount int64
}
