package types

import (
	"time"

	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/shared/projection"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type VolunteerProjection = projection.Projection[*domain.Volunteer]

type VolunteerPage = query.Page[*VolunteerProjection]

type VolunteerIdentifier struct {
	ID int64
}

// CreateVolunteerInput registers a pending volunteer. A nil JoinedAt means now.
type CreateVolunteerInput struct {
	Name     string
	Phone    string
	Email    string
	Note     string
	JoinedAt *time.Time
}

// UpdateVolunteerInput is a partial update; nil fields are left unchanged.
type UpdateVolunteerInput struct {
	ID       int64
	Name     *string
	Phone    *string
	Email    *string
	Note     *string
	JoinedAt *time.Time
}

type ListVolunteersInput struct {
	Status  *domain.Status
	Keyword *string
	Page    query.Request
}

type StatusCount struct {
	Status domain.Status
	Count  int64
}
