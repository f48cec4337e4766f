package shelterserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	volunteerhttpmapper "github.com/Apurer/shelter-api/internal/domains/volunteers/adapters/http/mapper"
	volunteertypes "github.com/Apurer/shelter-api/internal/domains/volunteers/application/types"
	volunteerdomain "github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	volunteerports "github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type VolunteerAPI struct {
	service volunteerports.Service
}

func NewVolunteerAPI(service volunteerports.Service) VolunteerAPI {
	return VolunteerAPI{service: service}
}

// Post /api/volunteers
func (api *VolunteerAPI) CreateVolunteer(c *gin.Context) {
	var payload volunteerhttpmapper.CreateVolunteer
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := volunteerhttpmapper.ToCreateInput(payload)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, volunteerhttpmapper.FromProjection(created))
}

// Get /api/volunteers/:id
func (api *VolunteerAPI) GetVolunteer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	volunteer, err := api.service.GetByID(c.Request.Context(), volunteertypes.VolunteerIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volunteerhttpmapper.FromProjection(volunteer))
}

// Get /api/volunteers
// Lists volunteers filtered by status and a keyword over name, phone and email
func (api *VolunteerAPI) ListVolunteers(c *gin.Context) {
	values := c.Request.URL.Query()
	page, err := query.Parse(values, sortKeys(volunteerports.SortFields), volunteerports.DefaultSort)
	if err != nil {
		respondError(c, err)
		return
	}
	input := volunteertypes.ListVolunteersInput{Keyword: query.String(values, "keyword"), Page: page}
	if raw := query.String(values, "status"); raw != nil {
		status := volunteerdomain.Status(*raw)
		input.Status = &status
	}
	result, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volunteerhttpmapper.FromPage(result))
}

// Patch /api/volunteers/:id
func (api *VolunteerAPI) UpdateVolunteer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload volunteerhttpmapper.UpdateVolunteer
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := volunteerhttpmapper.ToUpdateInput(id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volunteerhttpmapper.FromProjection(updated))
}

// Delete /api/volunteers/:id
func (api *VolunteerAPI) DeleteVolunteer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), volunteertypes.VolunteerIdentifier{ID: id}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Patch /api/volunteers/:id/approve
func (api *VolunteerAPI) ApproveVolunteer(c *gin.Context) {
	api.transition(c, api.service.Approve)
}

// Patch /api/volunteers/:id/suspend
func (api *VolunteerAPI) SuspendVolunteer(c *gin.Context) {
	api.transition(c, api.service.Suspend)
}

// Patch /api/volunteers/:id/reinstate
func (api *VolunteerAPI) ReinstateVolunteer(c *gin.Context) {
	api.transition(c, api.service.Reinstate)
}

// Get /api/stats/volunteers
func (api *VolunteerAPI) CountVolunteersByStatus(c *gin.Context) {
	counts, err := api.service.CountByStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volunteerhttpmapper.FromStatusCounts(counts))
}

type volunteerTransition func(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error)

func (api *VolunteerAPI) transition(c *gin.Context, call volunteerTransition) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	updated, err := call(c.Request.Context(), volunteertypes.VolunteerIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volunteerhttpmapper.FromProjection(updated))
}
