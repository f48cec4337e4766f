package ports

import (
	"context"

	medicaltypes "github.com/Apurer/shelter-api/internal/domains/medical/application/types"
)

// Service defines medical record use cases (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input medicaltypes.CreateRecordInput) (*medicaltypes.RecordProjection, error)
	GetByID(ctx context.Context, input medicaltypes.RecordIdentifier) (*medicaltypes.RecordProjection, error)
	Update(ctx context.Context, input medicaltypes.UpdateRecordInput) (*medicaltypes.RecordProjection, error)
	Delete(ctx context.Context, input medicaltypes.RecordIdentifier) error
	List(ctx context.Context, input medicaltypes.ListRecordsInput) (*medicaltypes.RecordPage, error)
	RecentSummary(ctx context.Context, input medicaltypes.RecentSummaryInput) ([]*medicaltypes.RecordProjection, error)
}
