package mapper

import (
	"strings"
	"time"

	medicaltypes "github.com/Apurer/shelter-api/internal/domains/medical/application/types"
	"github.com/Apurer/shelter-api/internal/domains/medical/domain"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type CreateRecord struct {
	Type        string `json:"type"`
	PerformedAt string `json:"performedAt"`
	Cost        *int64 `json:"cost"`
	Description string `json:"description"`
}

type UpdateRecord struct {
	Type        *string `json:"type"`
	PerformedAt *string `json:"performedAt"`
	Cost        *int64  `json:"cost"`
	Description *string `json:"description"`
}

type Record struct {
	ID          int64     `json:"id"`
	AnimalID    int64     `json:"animalId"`
	Type        string    `json:"type"`
	PerformedAt time.Time `json:"performedAt"`
	Cost        *int64    `json:"cost"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToCreateInput binds a payload posted under /api/animals/:id/medical-records.
func ToCreateInput(animalID int64, in CreateRecord) (medicaltypes.CreateRecordInput, error) {
	out := medicaltypes.CreateRecordInput{
		AnimalID:    animalID,
		Type:        domain.Type(strings.TrimSpace(in.Type)),
		Cost:        in.Cost,
		Description: in.Description,
	}
	if strings.TrimSpace(in.PerformedAt) != "" {
		t, err := query.ParseTimestamp(in.PerformedAt)
		if err != nil {
			return out, invalidDate()
		}
		out.PerformedAt = t
	}
	return out, nil
}

func ToUpdateInput(id int64, in UpdateRecord) (medicaltypes.UpdateRecordInput, error) {
	out := medicaltypes.UpdateRecordInput{
		ID:          id,
		Cost:        in.Cost,
		Description: in.Description,
	}
	if in.Type != nil {
		t := domain.Type(strings.TrimSpace(*in.Type))
		out.Type = &t
	}
	if in.PerformedAt != nil {
		t, err := query.ParseTimestamp(*in.PerformedAt)
		if err != nil {
			return out, invalidDate()
		}
		out.PerformedAt = &t
	}
	return out, nil
}

func FromProjection(p *medicaltypes.RecordProjection) Record {
	if p == nil || p.Entity == nil {
		return Record{}
	}
	r := p.Entity
	return Record{
		ID:          r.ID,
		AnimalID:    r.AnimalID,
		Type:        string(r.Type),
		PerformedAt: r.PerformedAt,
		Cost:        r.Cost,
		Description: r.Description,
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
}

func FromProjections(items []*medicaltypes.RecordProjection) []Record {
	out := make([]Record, 0, len(items))
	for _, p := range items {
		out = append(out, FromProjection(p))
	}
	return out
}

func FromPage(p *medicaltypes.RecordPage) query.Page[Record] {
	return query.MapPage(*p, FromProjection)
}

func invalidDate() error {
	return failure.Validation("medical record validation failed", map[string]string{"performedAt": "performedAt must be ISO date"})
}
