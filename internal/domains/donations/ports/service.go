package ports

import (
	"context"

	donationtypes "github.com/Apurer/shelter-api/internal/domains/donations/application/types"
)

// Service defines donation use cases (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input donationtypes.CreateDonationInput) (*donationtypes.DonationProjection, error)
	GetByID(ctx context.Context, input donationtypes.DonationIdentifier) (*donationtypes.DonationProjection, error)
	Update(ctx context.Context, input donationtypes.UpdateDonationInput) (*donationtypes.DonationProjection, error)
	SetReceipt(ctx context.Context, input donationtypes.SetReceiptInput) (*donationtypes.DonationProjection, error)
	Delete(ctx context.Context, input donationtypes.DonationIdentifier) error
	List(ctx context.Context, input donationtypes.ListDonationsInput) (*donationtypes.DonationPage, error)
}
