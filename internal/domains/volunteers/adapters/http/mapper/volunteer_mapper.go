package mapper

import (
	"time"

	volunteertypes "github.com/Apurer/shelter-api/internal/domains/volunteers/application/types"
	"github.com/Apurer/shelter-api/internal/shared/failure"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// CreateVolunteer is the registration payload. Status is accepted only to reject it.
type CreateVolunteer struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email"`
	Note     string  `json:"note"`
	JoinedAt string  `json:"joinedAt"`
	Status   *string `json:"status"`
}

type UpdateVolunteer struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Note     *string `json:"note"`
	JoinedAt *string `json:"joinedAt"`
	Status   *string `json:"status"`
}

type Volunteer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Note      string    `json:"note"`
	Status    string    `json:"status"`
	JoinedAt  time.Time `json:"joinedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func ToCreateInput(in CreateVolunteer) (volunteertypes.CreateVolunteerInput, error) {
	out := volunteertypes.CreateVolunteerInput{
		Name:  in.Name,
		Phone: in.Phone,
		Email: in.Email,
		Note:  in.Note,
	}
	fields := map[string]string{}
	if in.Status != nil {
		fields["status"] = "status cannot be set on create"
	}
	if in.JoinedAt != "" {
		t, err := query.ParseTimestamp(in.JoinedAt)
		if err != nil {
			fields["joinedAt"] = "joinedAt must be ISO date"
		} else {
			out.JoinedAt = &t
		}
	}
	if len(fields) > 0 {
		return out, failure.Validation("volunteer validation failed", fields)
	}
	return out, nil
}

func ToUpdateInput(id int64, in UpdateVolunteer) (volunteertypes.UpdateVolunteerInput, error) {
	out := volunteertypes.UpdateVolunteerInput{
		ID:    id,
		Name:  in.Name,
		Phone: in.Phone,
		Email: in.Email,
		Note:  in.Note,
	}
	fields := map[string]string{}
	if in.Status != nil {
		fields["status"] = "status cannot be updated here"
	}
	if in.JoinedAt != nil {
		t, err := query.ParseTimestamp(*in.JoinedAt)
		if err != nil {
			fields["joinedAt"] = "joinedAt must be ISO date"
		} else {
			out.JoinedAt = &t
		}
	}
	if len(fields) > 0 {
		return out, failure.Validation("volunteer validation failed", fields)
	}
	return out, nil
}

func FromProjection(p *volunteertypes.VolunteerProjection) Volunteer {
	if p == nil || p.Entity == nil {
		return Volunteer{}
	}
	v := p.Entity
	return Volunteer{
		ID:        v.ID,
		Name:      v.Name,
		Phone:     v.Phone,
		Email:     v.Email,
		Note:      v.Note,
		Status:    string(v.Status),
		JoinedAt:  v.JoinedAt,
		CreatedAt: p.Metadata.CreatedAt,
		UpdatedAt: p.Metadata.UpdatedAt,
	}
}

func FromPage(p *volunteertypes.VolunteerPage) query.Page[Volunteer] {
	return query.MapPage(*p, FromProjection)
}

func FromStatusCounts(counts []volunteertypes.StatusCount) []StatusCount {
	out := make([]StatusCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, StatusCount{Status: string(c.Status), Count: c.Count})
	}
	return out
}
