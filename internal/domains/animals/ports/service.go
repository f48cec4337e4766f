package ports

import (
	"context"

	animaltypes "github.com/Apurer/shelter-api/internal/domains/animals/application/types"
)

// Service defines the animals use cases exposed to adapters (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input animaltypes.CreateAnimalInput) (*animaltypes.AnimalProjection, error)
	GetByID(ctx context.Context, input animaltypes.AnimalIdentifier) (*animaltypes.AnimalProjection, error)
	Update(ctx context.Context, input animaltypes.UpdateAnimalInput) (*animaltypes.AnimalProjection, error)
	ChangeStatus(ctx context.Context, input animaltypes.ChangeStatusInput) (*animaltypes.AnimalProjection, error)
	SetNeutered(ctx context.Context, input animaltypes.SetNeuteredInput) (*animaltypes.AnimalProjection, error)
	Delete(ctx context.Context, input animaltypes.AnimalIdentifier) error
	List(ctx context.Context, input animaltypes.ListAnimalsInput) (*animaltypes.AnimalPage, error)
}
