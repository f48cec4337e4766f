package shelterserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVolunteerLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/volunteers", s.staff, map[string]any{"name": "Yoon", "phone": "010-2222-3333", "status": "APPROVED"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, decodeError(t, rec).Details, "status")

	rec = s.do(t, http.MethodPost, "/api/volunteers", s.staff, map[string]any{"name": "Yoon", "phone": "010-2222-3333", "joinedAt": "2024-04-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	require.Equal(t, "PENDING", created["status"])
	path := "/api/volunteers/" + itoa(int64(created["id"].(float64)))

	rec = s.do(t, http.MethodPatch, path+"/approve", s.staff, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path+"/suspend", s.admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "PENDING", decodeError(t, rec).Details["currentStatus"])

	rec = s.do(t, http.MethodPatch, path+"/approve", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "APPROVED", decode[map[string]any](t, rec)["status"])

	rec = s.do(t, http.MethodPatch, path, s.staff, map[string]any{"note": "weekends", "status": "SUSPENDED"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPatch, path, s.staff, map[string]any{"note": "weekends"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "APPROVED", decode[map[string]any](t, rec)["status"])

	rec = s.do(t, http.MethodGet, "/api/volunteers?status=APPROVED&keyword=yoon", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode[map[string]any](t, rec)["totalElements"])

	rec = s.do(t, http.MethodGet, "/api/volunteers?status=RETIRED", s.staff, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/stats/volunteers", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	counts := decode[[]map[string]any](t, rec)
	require.Len(t, counts, 3)
	require.Equal(t, "APPROVED", counts[1]["status"])
	require.EqualValues(t, 1, counts[1]["count"])

	rec = s.do(t, http.MethodDelete, path, s.admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, path, s.staff, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMedicalRecordEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/animals/404/medical-records", s.staff, map[string]any{"type": "VACCINE", "performedAt": "2024-03-01"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ANIMAL_NOT_FOUND", decodeError(t, rec).Code)

	animalID := s.createAnimal(t, "")
	base := "/api/animals/" + itoa(animalID) + "/medical-records"

	rec = s.do(t, http.MethodPost, base, s.staff, map[string]any{"type": "GROOMING", "performedAt": "2024-03-01", "cost": -1})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeError(t, rec).Details
	require.Contains(t, details, "type")
	require.Contains(t, details, "cost")

	for _, day := range []string{"2024-03-01", "2024-03-05", "2024-03-09"} {
		rec = s.do(t, http.MethodPost, base, s.staff, map[string]any{"type": "TREATMENT", "performedAt": day, "cost": 15000})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	id := int64(decode[map[string]any](t, rec)["id"].(float64))
	path := "/api/medical-records/" + itoa(id)

	rec = s.do(t, http.MethodGet, base+"/summary?limit=2", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[[]map[string]any](t, rec)
	require.Len(t, summary, 2)
	require.EqualValues(t, id, summary[0]["id"])

	rec = s.do(t, http.MethodGet, base+"/summary?limit=51", s.staff, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/medical-records?animalId="+itoa(animalID)+"&type=TREATMENT", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decode[map[string]any](t, rec)["totalElements"])

	rec = s.do(t, http.MethodPatch, path, s.staff, map[string]any{"description": "stitches removed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "stitches removed", decode[map[string]any](t, rec)["description"])

	rec = s.do(t, http.MethodDelete, "/api/animals/"+itoa(animalID), s.admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, path, s.staff, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, path, s.admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDonationStatsEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, d := range []map[string]any{
		{"donorName": "Kim", "amount": 10000, "donatedAt": "2024-01-31"},
		{"donorName": "Lee", "amount": 5000, "donatedAt": "2024-02-01"},
		{"donorName": "Kim", "amount": 20000, "donatedAt": "2024-02-01"},
	} {
		rec := s.do(t, http.MethodPost, "/api/donations", s.staff, d)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/stats/donations/daily", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	daily := decode[[]map[string]any](t, rec)
	require.Len(t, daily, 2)
	require.Equal(t, "2024-02-01", daily[1]["day"])
	require.EqualValues(t, 25000, daily[1]["totalAmount"])
	require.EqualValues(t, 2, daily[1]["donationCount"])

	rec = s.do(t, http.MethodGet, "/api/stats/donations/monthly?from=2024-02-01", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	monthly := decode[[]map[string]any](t, rec)
	require.Len(t, monthly, 1)
	require.Equal(t, "2024-02", monthly[0]["month"])

	rec = s.do(t, http.MethodGet, "/api/stats/donations/top-donors?limit=1", s.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]map[string]any](t, rec)
	require.Len(t, top, 1)
	require.Equal(t, "Kim", top[0]["donorName"])
	require.EqualValues(t, 30000, top[0]["totalAmount"])

	rec = s.do(t, http.MethodGet, "/api/stats/donations/top-donors?limit=0", s.staff, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/stats/donations/daily?from=2024-03-01&to=2024-02-01", s.staff, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/stats/donations/daily?from=yesterday", s.staff, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/stats/donations/daily", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
