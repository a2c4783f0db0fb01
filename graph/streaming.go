package graph

import (
	"context"
	"slices"
)

// StreamResult contains the channels returned by streaming execution
type StreamResult struct {
	// Events receives every execution event in order. It is closed when the run ends.
	Events <-chan Event

	// Result receives the final state and error once Events is closed.
	Result <-chan RunResult
}

// RunResult is the outcome of a streamed run.
type RunResult struct {
	State State
	Err   error
}

// Stream runs the graph in a new goroutine and delivers its events over a
// channel. The caller must drain Events; the run blocks while the buffer is
// full unless ctx is cancelled.
func (cg *CompiledGraph) Stream(ctx context.Context, initial State, opts ...RunOption) StreamResult {
	events := make(chan Event, 64)
	result := make(chan RunResult, 1)

	forward := NodeListenerFunc(func(ctx context.Context, ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})

	go func() {
		defer close(result)
		state, err := cg.Invoke(ctx, initial, slices.Concat(opts, []RunOption{WithListeners(forward)})...)
		close(events)
		result <- RunResult{State: state, Err: err}
	}()

	return StreamResult{Events: events, Result: result}
}
