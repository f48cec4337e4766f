package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	adoptionactivities "github.com/Apurer/shelter-api/internal/platform/temporal/activities/adoptions"
)

// RunAdoptionConfirmationSequence executes the confirm activity. Storage hiccups are retried;
// business failures arrive as non-retryable errors and end the sequence on the first attempt.
func RunAdoptionConfirmationSequence(ctx workflow.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("adoption confirmation sequence started", "adoptionId", input.ID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var projection adoptiontypes.AdoptionProjection
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), adoptionactivities.ConfirmAdoptionActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("adoption confirmation sequence failed", "adoptionId", input.ID, "error", err)
		return nil, err
	}
	logger.Info("adoption confirmation sequence completed", "adoptionId", input.ID)
	return &projection, nil
}
