package adoptions

import (
	"context"
	"errors"
	"slices"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	adoptionports "github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// ConfirmAdoptionActivityName confirms an approved adoption and marks its animal adopted.
const ConfirmAdoptionActivityName = "adoptions.activities.ConfirmAdoption"

// FailurePayload is attached to non-retryable application errors so callers can rebuild the business failure.
type FailurePayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Activities groups activities that operate on the adoptions bounded context.
type Activities struct {
	service adoptionports.Service
}

// NewActivities wires the adoption service into the Temporal activities bundle.
func NewActivities(service adoptionports.Service) *Activities {
	return &Activities{service: service}
}

// ConfirmAdoption runs the transactional confirm. Business failures are returned as non-retryable
// application errors typed with their failure kind; infrastructure errors stay retryable.
func (a *Activities) ConfirmAdoption(ctx context.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("confirm adoption activity not initialized", "adoptionId", input.ID)
		return nil, errors.New("confirm adoption activity not initialized")
	}
	logger.Info("ConfirmAdoption activity started", "adoptionId", input.ID)
	result, err := a.service.Confirm(ctx, input)
	if err != nil {
		if f, ok := failure.As(err); ok {
			logger.Warn("ConfirmAdoption activity rejected", "adoptionId", input.ID, "kind", string(f.Kind))
			return nil, temporal.NewNonRetryableApplicationError(f.Error(), string(f.Kind), nil, FailurePayload{
				Code:    f.ResponseCode(),
				Message: f.Message,
				Details: f.Details,
			})
		}
		logger.Error("ConfirmAdoption activity failed", "adoptionId", input.ID, "error", err)
		return nil, err
	}
	logger.Info("ConfirmAdoption activity completed", "adoptionId", input.ID, "status", string(result.Entity.Status))
	return result, nil
}

// FailureFromError rebuilds a business failure from an application error produced by ConfirmAdoption.
func FailureFromError(err error) (*failure.Error, bool) {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return nil, false
	}
	kind := failure.Kind(appErr.Type())
	if !slices.Contains(failure.Kinds(), kind) {
		return nil, false
	}
	var payload FailurePayload
	if appErr.HasDetails() {
		if derr := appErr.Details(&payload); derr != nil {
			return nil, false
		}
	}
	f := &failure.Error{Kind: kind, Message: payload.Message, Details: payload.Details, Err: err}
	if payload.Code != string(kind) {
		f.Code = payload.Code
	}
	return f, true
}
