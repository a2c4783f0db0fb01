package graph

import "context"

type runIDKey struct{}

type stepKey struct{}

// ContextWithRunID attaches a run identifier to the context.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier set by the engine, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func withStep(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, stepKey{}, step)
}

// StepFromContext returns the 1-based step number of the node being executed.
func StepFromContext(ctx context.Context) int {
	step, _ := ctx.Value(stepKey{}).(int)
	return step
}
