// Package operations runs the fuel price pipeline as an ordered set of steps.
//
// The pipeline has three steps, each also runnable on its own:
//
//   - expand: postcode ranges and region areas to the postcode lookup
//   - enrich: monthly snapshots to per-month and combined enriched tables
//   - rank: the combined table to weekly and monthly price ranks
//
// Core Components:
//
// Manager: runs the requested steps sequentially in dependency order. Each
// step gets its own span and timeout, and its duration is recorded. The first
// failure stops the run and the remaining steps are skipped.
//
// Step: a single unit of work. A step names the steps it depends on; a
// dependency that is not part of the current run is assumed to have produced
// its artifact in an earlier run.
//
// Registry: registration and dependency ordering of steps.
//
// State: the runtime state of the operation and of each step, including the
// row counts and artifacts each step records as metadata.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	if err := operations.RegisterPipeline(registry, &operations.StageOptions{
//		Paths:    paths,
//		Pipeline: cfg.Pipeline,
//		Metrics:  telemetry.Metrics,
//		Logger:   logger,
//	}); err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, nil, operations.NewOperationTracer(telemetry), logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
package operations
