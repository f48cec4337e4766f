package adoptions

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/platform/temporal/sequences"
)

const (
	// ConfirmationWorkflowName is the public identifier for registering the workflow.
	ConfirmationWorkflowName = "adoptions.workflows.Confirmation"
	// ConfirmationTaskQueue is the default queue consumed by the worker.
	ConfirmationTaskQueue = "adoption-confirmation"
)

// ConfirmationWorkflowInput carries the confirm command and the caller's trace id.
type ConfirmationWorkflowInput struct {
	Command adoptiontypes.ConfirmAdoptionInput
	TraceID string
}

// ConfirmationWorkflowID is deterministic per adoption, so a repeated start joins the running execution.
func ConfirmationWorkflowID(adoptionID int64) string {
	return fmt.Sprintf("adoption-confirm-%d", adoptionID)
}

// AdoptionConfirmationWorkflow confirms one adoption durably.
func AdoptionConfirmationWorkflow(ctx workflow.Context, input ConfirmationWorkflowInput) (*adoptiontypes.AdoptionProjection, error) {
	logger := workflow.GetLogger(ctx)
	id := input.Command.ID
	logger.Info("AdoptionConfirmationWorkflow started", withTraceID(input.TraceID, "adoptionId", id)...)
	projection, err := sequences.RunAdoptionConfirmationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("AdoptionConfirmationWorkflow failed", withTraceID(input.TraceID, "adoptionId", id, "error", err)...)
		return nil, err
	}
	logger.Info("AdoptionConfirmationWorkflow completed", withTraceID(input.TraceID, "adoptionId", id)...)
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
