package shelterserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	statshttpmapper "github.com/Apurer/shelter-api/internal/domains/stats/adapters/http/mapper"
	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	statsports "github.com/Apurer/shelter-api/internal/domains/stats/ports"
	"github.com/Apurer/shelter-api/internal/shared/query"
)

type StatsAPI struct {
	service statsports.Service
}

func NewStatsAPI(service statsports.Service) StatsAPI {
	return StatsAPI{service: service}
}

// Get /api/stats/donations/daily
func (api *StatsAPI) DonationsDaily(c *gin.Context) {
	r, err := statsRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := api.service.DonationsDaily(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statshttpmapper.FromDaily(rows))
}

// Get /api/stats/donations/monthly
func (api *StatsAPI) DonationsMonthly(c *gin.Context) {
	r, err := statsRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := api.service.DonationsMonthly(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statshttpmapper.FromMonthly(rows))
}

// Get /api/stats/donations/top-donors
func (api *StatsAPI) TopDonors(c *gin.Context) {
	r, err := statsRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := query.Int64(c.Request.URL.Query(), "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := api.service.TopDonors(c.Request.Context(), statstypes.TopDonorsInput{Range: r, Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statshttpmapper.FromDonors(rows))
}

func statsRange(c *gin.Context) (statstypes.Range, error) {
	values := c.Request.URL.Query()
	var (
		r   statstypes.Range
		err error
	)
	if r.From, err = query.Time(values, "from"); err != nil {
		return r, err
	}
	r.To, err = query.Time(values, "to")
	return r, err
}
