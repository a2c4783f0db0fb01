package store

import (
	"context"
	"sync"
	"time"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/log"
)

// Recorder is a graph.NodeListener that saves a RunRecord when a run ends.
// Save errors are logged; they never affect the run.
type Recorder struct {
	store  RunStore
	logger log.Logger

	mu      sync.Mutex
	started map[string]time.Time
}

// NewRecorder creates a recorder saving to store.
func NewRecorder(store RunStore, logger log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		store:   store,
		logger:  logger,
		started: make(map[string]time.Time),
	}
}

// OnNodeEvent implements graph.NodeListener.
func (r *Recorder) OnNodeEvent(ctx context.Context, ev graph.Event) {
	switch ev.Type {
	case graph.EventChainStart:
		r.mu.Lock()
		r.started[ev.RunID] = ev.Timestamp
		r.mu.Unlock()
	case graph.EventChainEnd, graph.EventChainError:
		r.mu.Lock()
		startedAt, ok := r.started[ev.RunID]
		delete(r.started, ev.RunID)
		r.mu.Unlock()
		if !ok {
			startedAt = ev.Timestamp
		}

		record := NewRunRecord(ev.RunID, ev.State, ev.Step, ev.Err, startedAt, ev.Timestamp)
		if err := r.store.Save(context.WithoutCancel(ctx), record); err != nil {
			r.logger.Error("failed to save run %s: %v", ev.RunID, err)
			return
		}
		r.logger.Debug("run %s saved (%s)", ev.RunID, record.Status)
	}
}
