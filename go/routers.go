// Package shelterserver is the gin transport for the shelter API.
package shelterserver

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	authdomain "github.com/Apurer/shelter-api/internal/domains/auth/domain"
)

// Access describes who may call a route.
type Access int

const (
	// Authenticated routes need a valid access token.
	Authenticated Access = iota
	// Public routes skip authentication.
	Public
	// AdminOnly routes need a valid access token with the ADMIN role.
	AdminOnly
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Access selects the guards placed before HandlerFunc.
	Access Access
}

// ApiHandleFunctions groups the handlers and the cross-cutting pieces the router wires in.
type ApiHandleFunctions struct {
	// Routes for the AnimalAPI part of the API
	AnimalAPI AnimalAPI
	// Routes for the AdoptionAPI part of the API
	AdoptionAPI AdoptionAPI
	// Routes for the DonationAPI part of the API
	DonationAPI DonationAPI
	// Routes for the VolunteerAPI part of the API
	VolunteerAPI VolunteerAPI
	// Routes for the MedicalAPI part of the API
	MedicalAPI MedicalAPI
	// Routes for the StatsAPI part of the API
	StatsAPI StatsAPI
	// Routes for the AuthAPI part of the API; it also authenticates the protected routes
	AuthAPI AuthAPI
	// Routes for the HealthAPI part of the API
	HealthAPI HealthAPI

	// Metrics is optional. When set, every request is observed and /metrics is served.
	Metrics *HTTPMetrics
	// Logger receives unhandled request errors.
	Logger *slog.Logger
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds routes, error handling and guards to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	useJSONFieldNames()
	responder := NewErrorResponder(handleFunctions.Logger)
	router.Use(withResponder(responder), gin.CustomRecovery(recoverPanic))
	if handleFunctions.Metrics != nil {
		router.Use(handleFunctions.Metrics.Middleware())
		router.GET("/metrics", handleFunctions.Metrics.Handler())
	}
	router.NoRoute(routeNotFound)

	requireAuth := handleFunctions.AuthAPI.RequireAuth()
	requireAdmin := RequireRole(authdomain.RoleAdmin)
	for _, route := range getRoutes(&handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		var chain []gin.HandlerFunc
		switch route.Access {
		case Authenticated:
			chain = append(chain, requireAuth)
		case AdminOnly:
			chain = append(chain, requireAuth, requireAdmin)
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// Default handler for not yet implemented routes
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func sortKeys(fields map[string]string) []string {
	return slices.Sorted(maps.Keys(fields))
}

func getRoutes(h *ApiHandleFunctions) []Route {
	return []Route{
		{"Health", http.MethodGet, "/health", h.HealthAPI.Health, Public},

		{"Login", http.MethodPost, "/auth/login", h.AuthAPI.Login, Public},
		{"Refresh", http.MethodPost, "/auth/refresh", h.AuthAPI.Refresh, Public},
		{"Logout", http.MethodPost, "/auth/logout", h.AuthAPI.Logout, Public},

		{"CreateAnimal", http.MethodPost, "/api/animals", h.AnimalAPI.CreateAnimal, Authenticated},
		{"ListAnimals", http.MethodGet, "/api/animals", h.AnimalAPI.ListAnimals, Authenticated},
		{"GetAnimal", http.MethodGet, "/api/animals/:id", h.AnimalAPI.GetAnimal, Authenticated},
		{"UpdateAnimal", http.MethodPatch, "/api/animals/:id", h.AnimalAPI.UpdateAnimal, Authenticated},
		{"ChangeAnimalStatus", http.MethodPatch, "/api/animals/:id/status", h.AnimalAPI.ChangeAnimalStatus, AdminOnly},
		{"SetAnimalNeutered", http.MethodPatch, "/api/animals/:id/neutered", h.AnimalAPI.SetAnimalNeutered, Authenticated},
		{"DeleteAnimal", http.MethodDelete, "/api/animals/:id", h.AnimalAPI.DeleteAnimal, AdminOnly},

		{"CreateAdoption", http.MethodPost, "/api/adoptions", h.AdoptionAPI.CreateAdoption, Authenticated},
		{"ListAdoptions", http.MethodGet, "/api/adoptions", h.AdoptionAPI.ListAdoptions, Authenticated},
		{"GetAdoption", http.MethodGet, "/api/adoptions/:id", h.AdoptionAPI.GetAdoption, Authenticated},
		{"ApproveAdoption", http.MethodPatch, "/api/adoptions/:id/approve", h.AdoptionAPI.ApproveAdoption, AdminOnly},
		{"ConfirmAdoption", http.MethodPatch, "/api/adoptions/:id/confirm", h.AdoptionAPI.ConfirmAdoption, AdminOnly},
		{"CancelAdoption", http.MethodPatch, "/api/adoptions/:id/cancel", h.AdoptionAPI.CancelAdoption, Authenticated},

		{"CreateDonation", http.MethodPost, "/api/donations", h.DonationAPI.CreateDonation, Authenticated},
		{"ListDonations", http.MethodGet, "/api/donations", h.DonationAPI.ListDonations, Authenticated},
		{"GetDonation", http.MethodGet, "/api/donations/:id", h.DonationAPI.GetDonation, Authenticated},
		{"UpdateDonation", http.MethodPatch, "/api/donations/:id", h.DonationAPI.UpdateDonation, Authenticated},
		{"SetDonationReceipt", http.MethodPatch, "/api/donations/:id/receipt", h.DonationAPI.SetDonationReceipt, Authenticated},
		{"DeleteDonation", http.MethodDelete, "/api/donations/:id", h.DonationAPI.DeleteDonation, AdminOnly},

		{"CreateVolunteer", http.MethodPost, "/api/volunteers", h.VolunteerAPI.CreateVolunteer, Authenticated},
		{"ListVolunteers", http.MethodGet, "/api/volunteers", h.VolunteerAPI.ListVolunteers, Authenticated},
		{"GetVolunteer", http.MethodGet, "/api/volunteers/:id", h.VolunteerAPI.GetVolunteer, Authenticated},
		{"UpdateVolunteer", http.MethodPatch, "/api/volunteers/:id", h.VolunteerAPI.UpdateVolunteer, Authenticated},
		{"ApproveVolunteer", http.MethodPatch, "/api/volunteers/:id/approve", h.VolunteerAPI.ApproveVolunteer, AdminOnly},
		{"SuspendVolunteer", http.MethodPatch, "/api/volunteers/:id/suspend", h.VolunteerAPI.SuspendVolunteer, AdminOnly},
		{"ReinstateVolunteer", http.MethodPatch, "/api/volunteers/:id/reinstate", h.VolunteerAPI.ReinstateVolunteer, AdminOnly},
		{"DeleteVolunteer", http.MethodDelete, "/api/volunteers/:id", h.VolunteerAPI.DeleteVolunteer, AdminOnly},

		{"CreateMedicalRecord", http.MethodPost, "/api/animals/:id/medical-records", h.MedicalAPI.CreateMedicalRecord, Authenticated},
		{"ListAnimalMedicalRecords", http.MethodGet, "/api/animals/:id/medical-records", h.MedicalAPI.ListAnimalMedicalRecords, Authenticated},
		{"MedicalSummary", http.MethodGet, "/api/animals/:id/medical-records/summary", h.MedicalAPI.MedicalSummary, Authenticated},
		{"ListMedicalRecords", http.MethodGet, "/api/medical-records", h.MedicalAPI.ListMedicalRecords, Authenticated},
		{"GetMedicalRecord", http.MethodGet, "/api/medical-records/:id", h.MedicalAPI.GetMedicalRecord, Authenticated},
		{"UpdateMedicalRecord", http.MethodPatch, "/api/medical-records/:id", h.MedicalAPI.UpdateMedicalRecord, Authenticated},
		{"DeleteMedicalRecord", http.MethodDelete, "/api/medical-records/:id", h.MedicalAPI.DeleteMedicalRecord, AdminOnly},

		{"CountVolunteersByStatus", http.MethodGet, "/api/stats/volunteers", h.VolunteerAPI.CountVolunteersByStatus, Authenticated},
		{"DonationsDaily", http.MethodGet, "/api/stats/donations/daily", h.StatsAPI.DonationsDaily, Authenticated},
		{"DonationsMonthly", http.MethodGet, "/api/stats/donations/monthly", h.StatsAPI.DonationsMonthly, Authenticated},
		{"TopDonors", http.MethodGet, "/api/stats/donations/top-donors", h.StatsAPI.TopDonors, Authenticated},
	}
}
