package types

import (
	"time"

	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type RecordProjection = projection.Projection[*domain.Record]

type RecordPage = query.Page[*RecordProjection]

type RecordIdentifier struct {
	ID int64
}

type CreateRecordInput struct {
	AnimalID    int64
	Type        domain.Type
	PerformedAt time.Time
	Cost        *int64
	Description string
}

// UpdateRecordInput is a partial update; nil fields are left unchanged. The animal cannot be changed.
type UpdateRecordInput struct {
	ID          int64
	Type        *domain.Type
	PerformedAt *time.Time
	Cost        *int64
	Description *string
}

// ListRecordsInput lists every record, or one animal's when AnimalID is set.
type ListRecordsInput struct {
	AnimalID *int64
	Type     *domain.Type
	From     *time.Time
	To       *time.Time
	Page     query.Request
}

// RecentSummaryInput asks for an animal's latest records. A nil Limit means the default.
type RecentSummaryInput struct {
	AnimalID int64
	Limit    *int64
}
