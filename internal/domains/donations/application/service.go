package application

import (
	"context"
	"errors"

	types "github.com/Apurer/shelter-api/internal/domains/donations/application/types"
	"github.com/Apurer/shelter-api/internal/domains/donations/domain"
	"github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// Service orchestrates donation use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input types.CreateDonationInput) (*types.DonationProjection, error) {
	donation, err := domain.NewDonation(input.DonorName, input.DonorContact, input.Amount, input.DonatedAt, input.ReceiptIssued, input.Note)
	if err != nil {
		return nil, mapError(err, 0)
	}
	saved, err := s.repo.Create(ctx, donation)
	if err != nil {
		return nil, mapError(err, 0)
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, input types.DonationIdentifier) (*types.DonationProjection, error) {
	found, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, input.ID)
	}
	return found, nil
}

func (s *Service) Update(ctx context.Context, input types.UpdateDonationInput) (*types.DonationProjection, error) {
	return s.mutate(ctx, input.ID, func(d *domain.Donation) error {
		var errs []error
		if input.DonorName != nil {
			errs = append(errs, d.ChangeDonor(*input.DonorName))
		}
		if input.DonorContact != nil {
			errs = append(errs, d.ChangeContact(*input.DonorContact))
		}
		if input.Amount != nil {
			errs = append(errs, d.ChangeAmount(*input.Amount))
		}
		if input.DonatedAt != nil {
			errs = append(errs, d.ChangeDonatedAt(*input.DonatedAt))
		}
		if input.ReceiptIssued != nil {
			d.IssueReceipt(*input.ReceiptIssued)
		}
		if input.Note != nil {
			errs = append(errs, d.ChangeNote(*input.Note))
		}
		return errors.Join(errs...)
	})
}

// SetReceipt flips the receipt flag only.
func (s *Service) SetReceipt(ctx context.Context, input types.SetReceiptInput) (*types.DonationProjection, error) {
	return s.mutate(ctx, input.ID, func(d *domain.Donation) error {
		d.IssueReceipt(input.ReceiptIssued)
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, input types.DonationIdentifier) error {
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err, input.ID)
	}
	return nil
}

// List applies filters after checking the amount range is coherent.
func (s *Service) List(ctx context.Context, input types.ListDonationsInput) (*types.DonationPage, error) {
	if input.MinAmount != nil && input.MaxAmount != nil && *input.MinAmount > *input.MaxAmount {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{"minAmount": "minAmount must be <= maxAmount"})
	}
	for field, v := range map[string]*int64{"minAmount": input.MinAmount, "maxAmount": input.MaxAmount} {
		if v != nil && *v < 0 {
			return nil, failure.InvalidQuery("invalid query parameter", map[string]string{field: field + " must be integer >= 0"})
		}
	}
	items, total, err := s.repo.List(ctx, ports.ListFilter{
		Keyword:       input.Keyword,
		ReceiptIssued: input.ReceiptIssued,
		MinAmount:     input.MinAmount,
		MaxAmount:     input.MaxAmount,
		DonatedFrom:   input.From,
		DonatedTo:     input.To,
	}, input.Page)
	if err != nil {
		return nil, err
	}
	page := query.NewPage(items, input.Page, total)
	return &page, nil
}

func (s *Service) mutate(ctx context.Context, id int64, apply func(*domain.Donation) error) (*types.DonationProjection, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, id)
	}
	donation := current.Entity.Clone()
	if err := apply(donation); err != nil {
		return nil, mapError(err, id)
	}
	saved, err := s.repo.Update(ctx, donation)
	if err != nil {
		return nil, mapError(err, id)
	}
	return saved, nil
}

var _ ports.Service = (*Service)(nil)
