package ports

import (
	"context"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
)

// Service defines the adoption lifecycle exposed to adapters (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input adoptiontypes.CreateAdoptionInput) (*adoptiontypes.AdoptionProjection, error)
	GetByID(ctx context.Context, input adoptiontypes.AdoptionIdentifier) (*adoptiontypes.AdoptionProjection, error)
	List(ctx context.Context, input adoptiontypes.ListAdoptionsInput) (*adoptiontypes.AdoptionPage, error)
	Approve(ctx context.Context, input adoptiontypes.AdoptionIdentifier) (*adoptiontypes.AdoptionProjection, error)
	Confirm(ctx context.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error)
	Cancel(ctx context.Context, input adoptiontypes.CancelAdoptionInput) (*adoptiontypes.AdoptionProjection, error)
}

// WorkflowOrchestrator runs confirmations either inline or through a durable workflow engine.
type WorkflowOrchestrator interface {
	ConfirmAdoption(ctx context.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error)
}
