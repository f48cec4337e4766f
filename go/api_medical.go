package shelterserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	medicalhttpmapper "github.com/Apurer/shelter-api/internal/domains/medical/adapters/http/mapper"
	medicaltypes "github.com/Apurer/shelter-api/internal/domains/medical/application/types"
	medicaldomain "github.com/Apurer/shelter-api/internal/domains/medical/domain"
	medicalports "github.com/Apurer/shelter-api/internal/domains/medical/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type MedicalAPI struct {
	service medicalports.Service
}

func NewMedicalAPI(service medicalports.Service) MedicalAPI {
	return MedicalAPI{service: service}
}

// Post /api/animals/:id/medical-records
func (api *MedicalAPI) CreateMedicalRecord(c *gin.Context) {
	animalID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload medicalhttpmapper.CreateRecord
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := medicalhttpmapper.ToCreateInput(animalID, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, medicalhttpmapper.FromProjection(created))
}

// Get /api/animals/:id/medical-records
func (api *MedicalAPI) ListAnimalMedicalRecords(c *gin.Context) {
	animalID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, err := listMedicalRecordsInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	input.AnimalID = &animalID
	api.list(c, input)
}

// Get /api/animals/:id/medical-records/summary
// Returns the latest records by performedAt; limit defaults to 5
func (api *MedicalAPI) MedicalSummary(c *gin.Context) {
	animalID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, err := query.Int64(c.Request.URL.Query(), "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	recent, err := api.service.RecentSummary(c.Request.Context(), medicaltypes.RecentSummaryInput{AnimalID: animalID, Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicalhttpmapper.FromProjections(recent))
}

// Get /api/medical-records
func (api *MedicalAPI) ListMedicalRecords(c *gin.Context) {
	input, err := listMedicalRecordsInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	input.AnimalID, err = query.Int64(c.Request.URL.Query(), "animalId")
	if err != nil {
		respondError(c, err)
		return
	}
	api.list(c, input)
}

func (api *MedicalAPI) list(c *gin.Context, input medicaltypes.ListRecordsInput) {
	result, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicalhttpmapper.FromPage(result))
}

func listMedicalRecordsInput(c *gin.Context) (medicaltypes.ListRecordsInput, error) {
	values := c.Request.URL.Query()
	var (
		input medicaltypes.ListRecordsInput
		err   error
	)
	if input.Page, err = query.Parse(values, sortKeys(medicalports.SortFields), medicalports.DefaultSort); err != nil {
		return input, err
	}
	if input.From, err = query.Time(values, "from"); err != nil {
		return input, err
	}
	if input.To, err = query.Time(values, "to"); err != nil {
		return input, err
	}
	if raw := query.String(values, "type"); raw != nil {
		t := medicaldomain.Type(*raw)
		input.Type = &t
	}
	return input, nil
}

// Get /api/medical-records/:id
func (api *MedicalAPI) GetMedicalRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := api.service.GetByID(c.Request.Context(), medicaltypes.RecordIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicalhttpmapper.FromProjection(record))
}

// Patch /api/medical-records/:id
func (api *MedicalAPI) UpdateMedicalRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload medicalhttpmapper.UpdateRecord
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := medicalhttpmapper.ToUpdateInput(id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicalhttpmapper.FromProjection(updated))
}

// Delete /api/medical-records/:id
func (api *MedicalAPI) DeleteMedicalRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), medicaltypes.RecordIdentifier{ID: id}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
