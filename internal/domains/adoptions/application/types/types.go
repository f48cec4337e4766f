package types

import (
	"time"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// AdoptionProjection transports an adoption together with its persistence metadata.
type AdoptionProjection = projection.Projection[*domain.Adoption]

// AdoptionPage is a page of adoptions.
type AdoptionPage = query.Page[*AdoptionProjection]

// AdoptionIdentifier addresses one adoption.
type AdoptionIdentifier struct {
	ID int64
}

// CreateAdoptionInput opens an adoption request. IdempotencyKey is optional.
type CreateAdoptionInput struct {
	AnimalID       int64
	ApplicantName  string
	ApplicantPhone string
	IdempotencyKey string
}

// ConfirmAdoptionInput finalizes an approved adoption.
type ConfirmAdoptionInput struct {
	ID        int64
	AdoptedAt time.Time
}

// CancelAdoptionInput withdraws an open adoption.
type CancelAdoptionInput struct {
	ID           int64
	CancelReason string
}

// ListAdoptionsInput filters and pages the adoption list.
type ListAdoptionsInput struct {
	Status   *string
	AnimalID *int64
	Keyword  *string
	From     *time.Time
	To       *time.Time
	Page     query.Request
}
