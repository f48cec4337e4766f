package mapper

import (
	"time"

	donationtypes "github.com/Apurer/shelter-api/internal/domains/donations/application/types"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type CreateDonation struct {
	DonorName     string `json:"donorName"`
	DonorContact  string `json:"donorContact"`
	Amount        int64  `json:"amount"`
	DonatedAt     string `json:"donatedAt"`
	ReceiptIssued bool   `json:"receiptIssued"`
	Note          string `json:"note"`
}

type UpdateDonation struct {
	DonorName     *string `json:"donorName"`
	DonorContact  *string `json:"donorContact"`
	Amount        *int64  `json:"amount"`
	DonatedAt     *string `json:"donatedAt"`
	ReceiptIssued *bool   `json:"receiptIssued"`
	Note          *string `json:"note"`
}

type SetReceipt struct {
	ReceiptIssued *bool `json:"receiptIssued" binding:"required"`
}

type Donation struct {
	ID            int64     `json:"id"`
	DonorName     string    `json:"donorName"`
	DonorContact  string    `json:"donorContact"`
	Amount        int64     `json:"amount"`
	DonatedAt     time.Time `json:"donatedAt"`
	ReceiptIssued bool      `json:"receiptIssued"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func ToCreateInput(in CreateDonation) (donationtypes.CreateDonationInput, error) {
	out := donationtypes.CreateDonationInput{
		DonorName:     in.DonorName,
		DonorContact:  in.DonorContact,
		Amount:        in.Amount,
		ReceiptIssued: in.ReceiptIssued,
		Note:          in.Note,
	}
	if in.DonatedAt != "" {
		t, err := query.ParseTimestamp(in.DonatedAt)
		if err != nil {
			return out, invalidDate()
		}
		out.DonatedAt = t
	}
	return out, nil
}

func ToUpdateInput(id int64, in UpdateDonation) (donationtypes.UpdateDonationInput, error) {
	out := donationtypes.UpdateDonationInput{
		ID:            id,
		DonorName:     in.DonorName,
		DonorContact:  in.DonorContact,
		Amount:        in.Amount,
		ReceiptIssued: in.ReceiptIssued,
		Note:          in.Note,
	}
	if in.DonatedAt != nil {
		t, err := query.ParseTimestamp(*in.DonatedAt)
		if err != nil {
			return out, invalidDate()
		}
		out.DonatedAt = &t
	}
	return out, nil
}

func FromProjection(p *donationtypes.DonationProjection) Donation {
	if p == nil || p.Entity == nil {
		return Donation{}
	}
	d := p.Entity
	return Donation{
		ID:            d.ID,
		DonorName:     d.DonorName,
		DonorContact:  d.DonorContact,
		Amount:        d.Amount,
		DonatedAt:     d.DonatedAt,
		ReceiptIssued: d.ReceiptIssued,
		Note:          d.Note,
		CreatedAt:     p.Metadata.CreatedAt,
		UpdatedAt:     p.Metadata.UpdatedAt,
	}
}

func FromPage(p *donationtypes.DonationPage) query.Page[Donation] {
	return query.MapPage(*p, FromProjection)
}

func invalidDate() error {
	return failure.Validation("donation validation failed", map[string]string{"donatedAt": "donatedAt must be ISO date"})
}
