package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/api/things/:id", handler)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/things/7?verbose=1", nil)
	router.ServeHTTP(rec, req)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestStatusForEveryKind(t *testing.T) {
	expected := map[failure.Kind]int{
		failure.KindValidation:     http.StatusUnprocessableEntity,
		failure.KindNotFound:       http.StatusNotFound,
		failure.KindAnimalNotFound: http.StatusNotFound,
		failure.KindStateConflict:  http.StatusConflict,
		failure.KindInvalidQuery:   http.StatusBadRequest,
		failure.KindUnauthorized:   http.StatusUnauthorized,
		failure.KindForbidden:      http.StatusForbidden,
	}
	for _, kind := range failure.Kinds() {
		status, ok := expected[kind]
		require.True(t, ok, "kind %s has no expected status", kind)
		require.Equal(t, status, StatusForKind(kind), kind)
	}
	require.Equal(t, http.StatusInternalServerError, StatusForKind("SOMETHING_ELSE"))
}

func TestRespondErrorRendersFailure(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		err := fmt.Errorf("confirm: %w", failure.StateConflict("not approved", map[string]any{"currentStatus": "REQUESTED"}))
		RespondError(c, err)
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, http.StatusConflict, body.Status)
	require.Equal(t, "STATE_CONFLICT", body.Code)
	require.Equal(t, "not approved", body.Message)
	require.Equal(t, "/api/things/7?verbose=1", body.Path)
	require.Equal(t, "REQUESTED", body.Details["currentStatus"])
	require.False(t, body.Timestamp.IsZero())
}

func TestRespondErrorHidesUnknownErrors(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		RespondError(c, errors.New("connection refused on 10.0.0.3"))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, CodeInternal, body.Code)
	require.NotContains(t, body.Message, "10.0.0.3")
	require.NotNil(t, body.Details)
}

func TestChainedResponderUsesMappers(t *testing.T) {
	sentinel := errors.New("bad json")
	responder := NewChainedResponder(nil)
	responder.AddMapper(func(err error) (ErrorResponse, bool) {
		if errors.Is(err, sentinel) {
			return ErrBadRequest.WithMessage("Invalid JSON body"), true
		}
		return ErrorResponse{}, false
	})

	rec, body := serve(t, func(c *gin.Context) {
		responder.RespondError(c, sentinel)
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeBadRequest, body.Code)
	require.Equal(t, "Invalid JSON body", body.Message)
	require.Equal(t, http.StatusBadRequest, HTTPStatusFromError(ErrBadRequest))
	require.Equal(t, http.StatusNotFound, HTTPStatusFromError(failure.NotFound("adoption", 1)))
}
