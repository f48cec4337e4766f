package shelterserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthAPI reports process liveness.
type HealthAPI struct {
	started time.Time
	now     func() time.Time
}

// NewHealthAPI measures uptime from started.
func NewHealthAPI(started time.Time) HealthAPI {
	return HealthAPI{started: started, now: time.Now}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Uptime    float64   `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// Get /health
func (api *HealthAPI) Health(c *gin.Context) {
	now := time.Now
	if api.now != nil {
		now = api.now
	}
	current := now()
	var uptime float64
	if !api.started.IsZero() {
		uptime = current.Sub(api.started).Seconds()
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Uptime: uptime, Timestamp: current.UTC()})
}
