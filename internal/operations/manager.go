package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fuelcli/internal/infrastructure"
)

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger,
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the requested steps, in dependency order, one at a time. The
// first failing step stops the run and every later step is skipped.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GetTraceID(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.GenerateTraceID()
	}
	ctx = infrastructure.WithTraceID(ctx, req.ID)

	state := NewOperationState(req.ID)

	steps, err := m.registry.Select(req.Steps...)
	if err != nil {
		if len(req.Steps) > 0 {
			for _, id := range req.Steps {
				if !m.registry.Has(id) {
					err = NewNotFoundError(id)
					break
				}
			}
		}
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state), err
	}

	ids := make([]string, len(steps))
	for i, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
		ids[i] = step.ID()
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, ids)
	defer span.End()

	m.logOperationStart(ctx, req.ID, ids)
	state.Start()

	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(span, state.GetStatus(), state.Duration(), err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), state.GetStatus())

	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logStageStart(ctx, state.ID, step.ID(), i+1, len(steps))
		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage executes a single Step inside its own span and timeout
func (m *Manager) executeStage(ctx context.Context, opState *OperationState, step Step) error {
	stepState := opState.GetStage(step.ID())
	if stepState == nil {
		return NewExecutionError(step.ID(), errors.New("step state not found"))
	}

	if err := m.checkDependencies(opState, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	if err := step.Validate(opState); err != nil {
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(verr)
		return verr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stageCtx, span := m.tracer.TraceStageExecution(stageCtx, opState.ID, step.ID())
	defer span.End()

	stepState.Start()
	startTime := time.Now()
	err := step.Execute(stageCtx, opState)
	duration := time.Since(startTime)

	if err != nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = NewTimeoutError(step.ID(), timeout.String(), err)
	} else if err != nil && ctx.Err() != nil {
		err = NewCancellationError(step.ID(), err)
	} else {
		err = WrapError(err, step.ID())
	}

	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		return err
	}

	stepState.Complete()
	m.logStageComplete(ctx, opState.ID, stepState)
	return nil
}

// checkDependencies verifies that dependencies in this run completed.
// Dependencies outside the run are satisfied by existing artifacts.
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			continue
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep,
				fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

// skipRemaining marks pending steps as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Steps:    state.Steps,
	}

	if state.Error != nil {
		resp.Error = state.Error.Error()
	}

	return resp
}
