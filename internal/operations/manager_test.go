package operations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelcli/internal/infrastructure"
	"fuelcli/internal/operations"
	"fuelcli/internal/operations/testutil"
)

func newTestManager(t *testing.T, steps ...operations.Step) (*operations.Manager, *testutil.MockSlogHandler) {
	t.Helper()
	logger, handler := testutil.CreateTestSlogLogger()
	registry := operations.NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	return operations.NewManager(registry, nil, nil, logger), handler
}

func TestManagerExecuteInDependencyOrder(t *testing.T) {
	var order []string
	record := func(id string) func(context.Context, *operations.OperationState) error {
		return func(ctx context.Context, state *operations.OperationState) error {
			order = append(order, id)
			return nil
		}
	}

	rank := testutil.NewMockStage("rank", "enrich")
	rank.ExecuteFunc = record("rank")
	enrich := testutil.NewMockStage("enrich", "expand")
	enrich.ExecuteFunc = record("enrich")
	expand := testutil.NewMockStage("expand")
	expand.ExecuteFunc = record("expand")

	manager, handler := newTestManager(t, rank, enrich, expand)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"expand", "enrich", "rank"}, order)
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.Empty(t, resp.Error)
	for _, s := range resp.Steps {
		assert.Equal(t, operations.StepStatusCompleted, s.GetStatus())
	}
	assert.True(t, handler.HasMessage("operation_complete"))
}

func TestManagerGeneratesOperationID(t *testing.T) {
	var seen string
	step := testutil.NewMockStage("only")
	step.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		seen = infrastructure.GetTraceID(ctx)
		return nil
	}
	manager, _ := newTestManager(t, step)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, seen)
}

func TestManagerStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")

	expand := testutil.NewMockStage("expand")
	enrich := testutil.NewMockStage("enrich", "expand")
	enrich.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		return boom
	}
	rank := testutil.NewMockStage("rank", "enrich")

	manager, handler := newTestManager(t, expand, enrich, rank)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	assert.Equal(t, "enrich", operations.FailedStep(err))

	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Equal(t, operations.StepStatusCompleted, resp.Steps["expand"].GetStatus())
	assert.Equal(t, operations.StepStatusFailed, resp.Steps["enrich"].GetStatus())
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps["rank"].GetStatus())
	assert.Equal(t, 0, rank.GetExecuteCalls())
	assert.True(t, handler.HasMessage("stage_error"))
}

func TestManagerValidationFailure(t *testing.T) {
	step := testutil.NewMockStage("expand")
	step.ValidateFunc = func(state *operations.OperationState) error {
		return errors.New("input missing")
	}
	manager, _ := newTestManager(t, step)

	_, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.Equal(t, 0, step.GetExecuteCalls())
}

func TestManagerSingleStepIgnoresOutsideDependencies(t *testing.T) {
	expand := testutil.NewMockStage("expand")
	rank := testutil.NewMockStage("rank", "expand")
	manager, _ := newTestManager(t, expand, rank)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{Steps: []string{"rank"}})
	require.NoError(t, err)
	assert.Len(t, resp.Steps, 1)
	assert.Equal(t, 0, expand.GetExecuteCalls())
	assert.Equal(t, 1, rank.GetExecuteCalls())
}

func TestManagerUnknownStep(t *testing.T) {
	manager, _ := newTestManager(t, testutil.NewMockStage("expand"))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{Steps: []string{"publish"}})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeNotFound, operations.GetErrorType(err))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
}

func TestManagerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	expand := testutil.NewMockStage("expand")
	expand.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		cancel()
		return nil
	}
	enrich := testutil.NewMockStage("enrich", "expand")

	manager, _ := newTestManager(t, expand, enrich)

	resp, err := manager.Execute(ctx, operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, operations.OperationStatusCancelled, resp.Status)
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps["enrich"].GetStatus())
	assert.Equal(t, 0, enrich.GetExecuteCalls())
}

func TestManagerStepTimeout(t *testing.T) {
	slow := testutil.NewMockStage("slow")
	slow.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		<-ctx.Done()
		return ctx.Err()
	}

	logger, _ := testutil.CreateTestSlogLogger()
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(slow))
	config := operations.NewConfig()
	config.SetStageTimeout("slow", 10*time.Millisecond)
	manager := operations.NewManager(registry, config, nil, logger)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeTimeout, operations.GetErrorType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, operations.StepStatusFailed, resp.Steps["slow"].GetStatus())
}

func TestStepStateLifecycle(t *testing.T) {
	state := operations.NewStepState("expand", "Expand")
	assert.Equal(t, operations.StepStatusPending, state.GetStatus())
	assert.Zero(t, state.Duration())

	state.Start()
	assert.Equal(t, operations.StepStatusActive, state.GetStatus())

	state.SetMetadata(operations.MetadataRowsWritten, 3)
	v, ok := state.GetMetadata(operations.MetadataRowsWritten)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	state.Complete()
	assert.Equal(t, operations.StepStatusCompleted, state.GetStatus())
	assert.NotNil(t, state.EndTime)
}

func TestOperationErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")

	err := operations.WrapError(cause, "rank")
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	assert.Equal(t, "rank", operations.FailedStep(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")

	// An existing operation error keeps its type
	timeout := operations.NewTimeoutError("", "1s", cause)
	wrapped := operations.WrapError(timeout, "enrich")
	assert.Equal(t, operations.ErrorTypeTimeout, operations.GetErrorType(wrapped))
	assert.Equal(t, "enrich", operations.FailedStep(wrapped))

	assert.Nil(t, operations.WrapError(nil, "rank"))
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
}
