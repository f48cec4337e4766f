package ports

import (
	"context"

	volunteertypes "github.com/Apurer/shelter-api/internal/domains/volunteers/application/types"
)

// Service defines volunteer use cases (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input volunteertypes.CreateVolunteerInput) (*volunteertypes.VolunteerProjection, error)
	GetByID(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error)
	Update(ctx context.Context, input volunteertypes.UpdateVolunteerInput) (*volunteertypes.VolunteerProjection, error)
	Delete(ctx context.Context, input volunteertypes.VolunteerIdentifier) error
	List(ctx context.Context, input volunteertypes.ListVolunteersInput) (*volunteertypes.VolunteerPage, error)
	Approve(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error)
	Suspend(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error)
	Reinstate(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error)
	CountByStatus(ctx context.Context) ([]volunteertypes.StatusCount, error)
}
