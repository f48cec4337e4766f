package workflows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	adoptionmemory "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/memory"
	adoptionapp "github.com/Apurer/shelter-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	adoptionactivities "github.com/Apurer/shelter-api/internal/platform/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/shelter-api/internal/platform/temporal/workflows/adoptions"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func startOptionsFor(id int64) interface{} {
	return mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.ID == adoptionworkflows.ConfirmationWorkflowID(id) && o.TaskQueue == adoptionworkflows.ConfirmationTaskQueue
	})
}

func TestTemporalConfirmReturnsWorkflowResult(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	adoptedAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	c.On("ExecuteWorkflow", mock.Anything, startOptionsFor(5), adoptionworkflows.ConfirmationWorkflowName, mock.Anything).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*adoptiontypes.AdoptionProjection)
		out.Entity = &domain.Adoption{ID: 5, Status: domain.StatusConfirmed, AdoptedAt: &adoptedAt}
	}).Return(nil)

	orchestrator := NewTemporalAdoptionWorkflows(c, "")
	result, err := orchestrator.ConfirmAdoption(context.Background(), adoptiontypes.ConfirmAdoptionInput{ID: 5, AdoptedAt: adoptedAt})
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, result.Entity.Status)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestTemporalConfirmTranslatesBusinessFailure(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}

	c.On("ExecuteWorkflow", mock.Anything, startOptionsFor(9), adoptionworkflows.ConfirmationWorkflowName, mock.Anything).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Return(temporal.NewNonRetryableApplicationError(
		"animal 3 is ADOPTED", string(failure.KindStateConflict), nil,
		adoptionactivities.FailurePayload{
			Code:    string(failure.KindStateConflict),
			Message: "animal 3 is ADOPTED",
			Details: map[string]any{"animalStatus": "ADOPTED"},
		},
	))

	_, err := NewTemporalAdoptionWorkflows(c, "").ConfirmAdoption(context.Background(), adoptiontypes.ConfirmAdoptionInput{ID: 9, AdoptedAt: time.Now()})
	require.ErrorIs(t, err, failure.ErrStateConflict)
	f, ok := failure.As(err)
	require.True(t, ok)
	require.Equal(t, "ADOPTED", f.Details["animalStatus"])
	require.Equal(t, "animal 3 is ADOPTED", f.Message)
}

func TestTemporalConfirmJoiningRunningWorkflowConflicts(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	firstAdoptedAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	workflowID := adoptionworkflows.ConfirmationWorkflowID(7)

	c.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.ID == workflowID && o.WorkflowExecutionErrorWhenAlreadyStarted
	}), adoptionworkflows.ConfirmationWorkflowName, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req-1", "run-1"))
	c.On("GetWorkflow", mock.Anything, workflowID, "run-1").Return(run)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*adoptiontypes.AdoptionProjection)
		out.Entity = &domain.Adoption{ID: 7, Status: domain.StatusConfirmed, AdoptedAt: &firstAdoptedAt}
	}).Return(nil)

	result, err := NewTemporalAdoptionWorkflows(c, "").ConfirmAdoption(context.Background(), adoptiontypes.ConfirmAdoptionInput{
		ID:        7,
		AdoptedAt: firstAdoptedAt.AddDate(0, 0, 5),
	})
	require.Nil(t, result)
	require.ErrorIs(t, err, failure.ErrStateConflict)
	f, ok := failure.As(err)
	require.True(t, ok)
	require.Equal(t, "CONFIRMED", f.Details["currentStatus"])
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestTemporalConfirmJoiningFailedWorkflowReturnsItsFailure(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	workflowID := adoptionworkflows.ConfirmationWorkflowID(8)

	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, adoptionworkflows.ConfirmationWorkflowName, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req-1", "run-2"))
	c.On("GetWorkflow", mock.Anything, workflowID, "run-2").Return(run)
	run.On("Get", mock.Anything, mock.Anything).Return(temporal.NewNonRetryableApplicationError(
		"cannot confirm adoption in status REQUESTED", string(failure.KindStateConflict), nil,
		adoptionactivities.FailurePayload{
			Code:    string(failure.KindStateConflict),
			Message: "cannot confirm adoption in status REQUESTED",
			Details: map[string]any{"currentStatus": "REQUESTED"},
		},
	))

	_, err := NewTemporalAdoptionWorkflows(c, "").ConfirmAdoption(context.Background(), adoptiontypes.ConfirmAdoptionInput{ID: 8, AdoptedAt: time.Now()})
	require.ErrorIs(t, err, failure.ErrStateConflict)
	f, ok := failure.As(err)
	require.True(t, ok)
	require.Equal(t, "REQUESTED", f.Details["currentStatus"])
}

func TestInlineConfirmDelegatesToService(t *testing.T) {
	animals := animalmemory.NewRepository()
	svc := adoptionapp.NewService(adoptionmemory.NewRepository(animals))

	_, err := NewInlineAdoptionWorkflows(svc).ConfirmAdoption(context.Background(), adoptiontypes.ConfirmAdoptionInput{ID: 1, AdoptedAt: time.Now()})
	require.ErrorIs(t, err, failure.ErrNotFound)

	var nilOrchestrator *InlineAdoptionWorkflows
	_, err = nilOrchestrator.ConfirmAdoption(context.Background(), adoptiontypes.ConfirmAdoptionInput{ID: 1})
	require.Error(t, err)
}
