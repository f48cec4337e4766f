package shelterserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adoptionhttpmapper "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/http/mapper"
	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	adoptionports "github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// IdempotencyKeyHeader lets clients retry POST /api/adoptions safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// AdoptionAPI wires HTTP transport with the adoption lifecycle service and workflows.
type AdoptionAPI struct {
	service   adoptionports.Service
	workflows adoptionports.WorkflowOrchestrator
}

// NewAdoptionAPI creates an AdoptionAPI. A nil orchestrator confirms through the service directly.
func NewAdoptionAPI(service adoptionports.Service, workflows adoptionports.WorkflowOrchestrator) AdoptionAPI {
	return AdoptionAPI{service: service, workflows: workflows}
}

// Post /api/adoptions
// Opens a REQUESTED adoption for an animal
func (api *AdoptionAPI) CreateAdoption(c *gin.Context) {
	var payload adoptionhttpmapper.CreateAdoption
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input := adoptionhttpmapper.ToCreateInput(payload, c.GetHeader(IdempotencyKeyHeader))
	created, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adoptionhttpmapper.FromProjection(created))
}

// Get /api/adoptions/:id
func (api *AdoptionAPI) GetAdoption(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	adoption, err := api.service.GetByID(c.Request.Context(), adoptiontypes.AdoptionIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(adoption))
}

// Get /api/adoptions
// Lists adoptions filtered by status, animalId, keyword and requestedAt range
func (api *AdoptionAPI) ListAdoptions(c *gin.Context) {
	input, err := listAdoptionsInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromPage(page))
}

func listAdoptionsInput(c *gin.Context) (adoptiontypes.ListAdoptionsInput, error) {
	values := c.Request.URL.Query()
	page, err := query.Parse(values, sortKeys(adoptionports.SortFields), adoptionports.DefaultSort)
	if err != nil {
		return adoptiontypes.ListAdoptionsInput{}, err
	}
	animalID, err := query.Int64(values, "animalId")
	if err != nil {
		return adoptiontypes.ListAdoptionsInput{}, err
	}
	from, err := query.Time(values, "from")
	if err != nil {
		return adoptiontypes.ListAdoptionsInput{}, err
	}
	to, err := query.Time(values, "to")
	if err != nil {
		return adoptiontypes.ListAdoptionsInput{}, err
	}
	return adoptiontypes.ListAdoptionsInput{
		Status:   query.String(values, "status"),
		AnimalID: animalID,
		Keyword:  query.String(values, "keyword"),
		From:     from,
		To:       to,
		Page:     page,
	}, nil
}

// Patch /api/adoptions/:id/approve
func (api *AdoptionAPI) ApproveAdoption(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	approved, err := api.service.Approve(c.Request.Context(), adoptiontypes.AdoptionIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(approved))
}

// Patch /api/adoptions/:id/confirm
// Confirms an approved adoption and marks the animal ADOPTED in one transaction
func (api *AdoptionAPI) ConfirmAdoption(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload adoptionhttpmapper.ConfirmAdoption
	if err := bindOptionalJSON(c, &payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := adoptionhttpmapper.ToConfirmInput(id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	var confirmed *adoptiontypes.AdoptionProjection
	if api.workflows != nil {
		confirmed, err = api.workflows.ConfirmAdoption(c.Request.Context(), input)
	} else {
		confirmed, err = api.service.Confirm(c.Request.Context(), input)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(confirmed))
}

// Patch /api/adoptions/:id/cancel
// The body is optional
func (api *AdoptionAPI) CancelAdoption(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload adoptionhttpmapper.CancelAdoption
	if err := bindOptionalJSON(c, &payload); err != nil {
		respondError(c, err)
		return
	}
	canceled, err := api.service.Cancel(c.Request.Context(), adoptionhttpmapper.ToCancelInput(id, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(canceled))
}
