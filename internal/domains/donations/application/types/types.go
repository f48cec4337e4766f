package types

import (
	"time"

	"github.com/Apurer/shelter-api/internal/domains/donations/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type DonationProjection = projection.Projection[*domain.Donation]

type DonationPage = query.Page[*DonationProjection]

type DonationIdentifier struct {
	ID int64
}

type CreateDonationInput struct {
	DonorName     string
	DonorContact  string
	Amount        int64
	DonatedAt     time.Time
	ReceiptIssued bool
	Note          string
}

// UpdateDonationInput is a partial update; nil fields are left unchanged.
type UpdateDonationInput struct {
	ID            int64
	DonorName     *string
	DonorContact  *string
	Amount        *int64
	DonatedAt     *time.Time
	ReceiptIssued *bool
	Note          *string
}

type SetReceiptInput struct {
	ID            int64
	ReceiptIssued bool
}

type ListDonationsInput struct {
	Keyword       *string
	ReceiptIssued *bool
	MinAmount     *int64
	MaxAmount     *int64
	From          *time.Time
	To            *time.Time
	Page          query.Request
}
