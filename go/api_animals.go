package shelterserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	animalhttpmapper "github.com/Apurer/shelter-api/internal/domains/animals/adapters/http/mapper"
	animaltypes "github.com/Apurer/shelter-api/internal/domains/animals/application/types"
	animalports "github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

// AnimalAPI wires HTTP transport with the animals service.
type AnimalAPI struct {
	service animalports.Service
}

// NewAnimalAPI creates an AnimalAPI backed by the provided service.
func NewAnimalAPI(service animalports.Service) AnimalAPI {
	return AnimalAPI{service: service}
}

// Post /api/animals
func (api *AnimalAPI) CreateAnimal(c *gin.Context) {
	var payload animalhttpmapper.CreateAnimal
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := animalhttpmapper.ToCreateInput(payload)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, animalhttpmapper.FromProjection(created))
}

// Get /api/animals/:id
func (api *AnimalAPI) GetAnimal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	animal, err := api.service.GetByID(c.Request.Context(), animaltypes.AnimalIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjection(animal))
}

// Get /api/animals
func (api *AnimalAPI) ListAnimals(c *gin.Context) {
	values := c.Request.URL.Query()
	page, err := query.Parse(values, sortKeys(animalports.SortFields), animalports.DefaultSort)
	if err != nil {
		respondError(c, err)
		return
	}
	neutered, err := query.Bool(values, "neutered")
	if err != nil {
		respondError(c, err)
		return
	}
	from, err := query.Time(values, "from")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := query.Time(values, "to")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := api.service.List(c.Request.Context(), animaltypes.ListAnimalsInput{
		Species:  query.String(values, "species"),
		Neutered: neutered,
		Status:   query.String(values, "status"),
		Keyword:  query.String(values, "keyword"),
		From:     from,
		To:       to,
		Page:     page,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromPage(result))
}

// Patch /api/animals/:id
// Partial update; absent fields are kept
func (api *AnimalAPI) UpdateAnimal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload animalhttpmapper.UpdateAnimal
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := animalhttpmapper.ToUpdateInput(id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjection(updated))
}

// Patch /api/animals/:id/status
func (api *AnimalAPI) ChangeAnimalStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload animalhttpmapper.ChangeStatus
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.ChangeStatus(c.Request.Context(), animaltypes.ChangeStatusInput{ID: id, Status: payload.Status})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjection(updated))
}

// Patch /api/animals/:id/neutered
func (api *AnimalAPI) SetAnimalNeutered(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload animalhttpmapper.SetNeutered
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.SetNeutered(c.Request.Context(), animaltypes.SetNeuteredInput{ID: id, Neutered: *payload.Neutered})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjection(updated))
}

// Delete /api/animals/:id
// Animals referenced by adoptions or medical records cannot be deleted
func (api *AnimalAPI) DeleteAnimal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), animaltypes.AnimalIdentifier{ID: id}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
