package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	adoptionactivities "github.com/Apurer/shelter-api/internal/platform/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/shelter-api/internal/platform/temporal/workflows/adoptions"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalAdoptionWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineAdoptionWorkflows)(nil)
)

// TemporalAdoptionWorkflows confirms adoptions through a Temporal workflow.
type TemporalAdoptionWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalAdoptionWorkflows wires a Temporal client into the orchestrator. An empty task queue selects the default.
func NewTemporalAdoptionWorkflows(c client.Client, taskQueue string) *TemporalAdoptionWorkflows {
	if taskQueue == "" {
		taskQueue = adoptionworkflows.ConfirmationTaskQueue
	}
	return &TemporalAdoptionWorkflows{client: c, taskQueue: taskQueue}
}

// ConfirmAdoption starts the confirmation workflow for the adoption and waits for its result.
// If another confirmation of the same adoption is already running, this call waits for that run and then
// reports the conflict the inline path would: the winner's success is never handed to the loser.
func (o *TemporalAdoptionWorkflows) ConfirmAdoption(ctx context.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal adoption workflows not configured")
	}
	workflowID := adoptionworkflows.ConfirmationWorkflowID(input.ID)
	options := client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	attached := false
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		adoptionworkflows.ConfirmationWorkflowName,
		adoptionworkflows.ConfirmationWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
		attached = true
	}
	var projection adoptiontypes.AdoptionProjection
	if err := run.Get(ctx, &projection); err != nil {
		if f, ok := adoptionactivities.FailureFromError(err); ok {
			return nil, f
		}
		return nil, err
	}
	if attached {
		return nil, confirmedByOtherRun(projection)
	}
	return &projection, nil
}

func confirmedByOtherRun(winner adoptiontypes.AdoptionProjection) error {
	status := domain.StatusConfirmed
	if winner.Entity != nil {
		status = winner.Entity.Status
	}
	return failure.StateConflict(
		fmt.Sprintf("cannot %s adoption in status %s", domain.ActionConfirm, status),
		map[string]any{"currentStatus": string(status)},
	)
}

// InlineAdoptionWorkflows calls the service directly, for tests and deployments without Temporal.
type InlineAdoptionWorkflows struct {
	service ports.Service
}

// NewInlineAdoptionWorkflows wraps the adoption service for synchronous execution.
func NewInlineAdoptionWorkflows(service ports.Service) *InlineAdoptionWorkflows {
	return &InlineAdoptionWorkflows{service: service}
}

// ConfirmAdoption delegates to the application service.
func (o *InlineAdoptionWorkflows) ConfirmAdoption(ctx context.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline adoption workflows not configured")
	}
	return o.service.Confirm(ctx, input)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
