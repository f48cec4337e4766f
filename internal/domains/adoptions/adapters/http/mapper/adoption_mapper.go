package mapper

import (
	"strings"
	"time"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// CreateAdoption is the inbound payload for POST /api/adoptions.
type CreateAdoption struct {
	AnimalID       int64  `json:"animalId"`
	ApplicantName  string `json:"applicantName"`
	ApplicantPhone string `json:"applicantPhone"`
}

// ConfirmAdoption accepts RFC 3339 or YYYY-MM-DD.
type ConfirmAdoption struct {
	AdoptedAt string `json:"adoptedAt" binding:"required"`
}

type CancelAdoption struct {
	CancelReason string `json:"cancelReason"`
}

// Adoption is the HTTP representation of an adoption.
type Adoption struct {
	ID             int64      `json:"id"`
	AnimalID       int64      `json:"animalId"`
	ApplicantName  string     `json:"applicantName"`
	ApplicantPhone string     `json:"applicantPhone"`
	Status         string     `json:"status"`
	RequestedAt    time.Time  `json:"requestedAt"`
	ApprovedAt     *time.Time `json:"approvedAt"`
	AdoptedAt      *time.Time `json:"adoptedAt"`
	CanceledAt     *time.Time `json:"canceledAt"`
	CancelReason   string     `json:"cancelReason"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func ToCreateInput(in CreateAdoption, idempotencyKey string) adoptiontypes.CreateAdoptionInput {
	return adoptiontypes.CreateAdoptionInput{
		AnimalID:       in.AnimalID,
		ApplicantName:  in.ApplicantName,
		ApplicantPhone: in.ApplicantPhone,
		IdempotencyKey: idempotencyKey,
	}
}

func ToConfirmInput(id int64, in ConfirmAdoption) (adoptiontypes.ConfirmAdoptionInput, error) {
	if strings.TrimSpace(in.AdoptedAt) == "" {
		return adoptiontypes.ConfirmAdoptionInput{}, failure.Validation("adoption validation failed", map[string]string{
			"adoptedAt": "adoptedAt is required",
		})
	}
	adoptedAt, err := query.ParseTimestamp(in.AdoptedAt)
	if err != nil {
		return adoptiontypes.ConfirmAdoptionInput{}, failure.Validation("adoption validation failed", map[string]string{
			"adoptedAt": "adoptedAt must be ISO date",
		})
	}
	return adoptiontypes.ConfirmAdoptionInput{ID: id, AdoptedAt: adoptedAt}, nil
}

func ToCancelInput(id int64, in CancelAdoption) adoptiontypes.CancelAdoptionInput {
	return adoptiontypes.CancelAdoptionInput{ID: id, CancelReason: in.CancelReason}
}

func FromProjection(p *adoptiontypes.AdoptionProjection) Adoption {
	if p == nil || p.Entity == nil {
		return Adoption{}
	}
	a := p.Entity
	return Adoption{
		ID:             a.ID,
		AnimalID:       a.AnimalID,
		ApplicantName:  a.ApplicantName,
		ApplicantPhone: a.ApplicantPhone,
		Status:         string(a.Status),
		RequestedAt:    a.RequestedAt,
		ApprovedAt:     a.ApprovedAt,
		AdoptedAt:      a.AdoptedAt,
		CanceledAt:     a.CanceledAt,
		CancelReason:   a.CancelReason,
		CreatedAt:      p.Metadata.CreatedAt,
		UpdatedAt:      p.Metadata.UpdatedAt,
	}
}

func FromPage(p *adoptiontypes.AdoptionPage) query.Page[Adoption] {
	return query.MapPage(*p, FromProjection)
}
