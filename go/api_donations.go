package shelterserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	donationhttpmapper "github.com/Apurer/shelter-api/internal/domains/donations/adapters/http/mapper"
	donationtypes "github.com/Apurer/shelter-api/internal/domains/donations/application/types"
	donationports "github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type DonationAPI struct {
	service donationports.Service
}

func NewDonationAPI(service donationports.Service) DonationAPI {
	return DonationAPI{service: service}
}

// Post /api/donations
func (api *DonationAPI) CreateDonation(c *gin.Context) {
	var payload donationhttpmapper.CreateDonation
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := donationhttpmapper.ToCreateInput(payload)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, donationhttpmapper.FromProjection(created))
}

// Get /api/donations/:id
func (api *DonationAPI) GetDonation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	donation, err := api.service.GetByID(c.Request.Context(), donationtypes.DonationIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donationhttpmapper.FromProjection(donation))
}

// Get /api/donations
func (api *DonationAPI) ListDonations(c *gin.Context) {
	input, err := listDonationsInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donationhttpmapper.FromPage(result))
}

func listDonationsInput(c *gin.Context) (donationtypes.ListDonationsInput, error) {
	values := c.Request.URL.Query()
	var (
		input donationtypes.ListDonationsInput
		err   error
	)
	if input.Page, err = query.Parse(values, sortKeys(donationports.SortFields), donationports.DefaultSort); err != nil {
		return input, err
	}
	if input.ReceiptIssued, err = query.Bool(values, "receiptIssued"); err != nil {
		return input, err
	}
	if input.MinAmount, err = query.Int64(values, "minAmount"); err != nil {
		return input, err
	}
	if input.MaxAmount, err = query.Int64(values, "maxAmount"); err != nil {
		return input, err
	}
	if input.From, err = query.Time(values, "from"); err != nil {
		return input, err
	}
	if input.To, err = query.Time(values, "to"); err != nil {
		return input, err
	}
	input.Keyword = query.String(values, "keyword")
	return input, nil
}

// Patch /api/donations/:id
func (api *DonationAPI) UpdateDonation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload donationhttpmapper.UpdateDonation
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	input, err := donationhttpmapper.ToUpdateInput(id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donationhttpmapper.FromProjection(updated))
}

// Patch /api/donations/:id/receipt
func (api *DonationAPI) SetDonationReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload donationhttpmapper.SetReceipt
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.SetReceipt(c.Request.Context(), donationtypes.SetReceiptInput{ID: id, ReceiptIssued: *payload.ReceiptIssued})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donationhttpmapper.FromProjection(updated))
}

// Delete /api/donations/:id
func (api *DonationAPI) DeleteDonation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), donationtypes.DonationIdentifier{ID: id}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
