package graph

import (
	"context"
	"strings"
	"time"

	"github.com/pilgrim-ai/pilgrim/log"
	"github.com/tmc/langchaingo/llms"
)

// NodeEvent represents different types of execution events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed and its update was merged
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node returned an error
	NodeEventError NodeEvent = "error"

	// EventEdgeTraversal indicates the engine resolved the next node
	EventEdgeTraversal NodeEvent = "edge"

	// EventChainStart indicates the graph execution has started
	EventChainStart NodeEvent = "chain_start"

	// EventChainEnd indicates the graph execution reached END
	EventChainEnd NodeEvent = "chain_end"

	// EventChainError indicates the graph execution was aborted
	EventChainError NodeEvent = "chain_error"
)

// Event describes one moment of a run.
type Event struct {
	// Type is the kind of event
	Type NodeEvent

	// RunID identifies the run
	RunID string

	// Step is the number of nodes started so far
	Step int

	// Node is the node the event refers to
	Node string

	// Next is the resolved destination for edge and chain start events
	Next string

	// State is the state at the time of the event
	State State

	// Update is the partial update returned by the node (complete events only)
	Update State

	// Err is set for error events
	Err error

	// Duration is how long the node or run took (complete and chain end events)
	Duration time.Duration

	// Timestamp when the event occurred
	Timestamp time.Time
}

// NodeListener defines the interface for execution event listeners.
// Listeners are called synchronously from the engine loop.
type NodeListener interface {
	OnNodeEvent(ctx context.Context, event Event)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc func(ctx context.Context, event Event)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc) OnNodeEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// LoggingListener writes execution events to a log.Logger.
type LoggingListener struct {
	logger       log.Logger
	includeState bool
}

// NewLoggingListener creates a listener logging to logger. When includeState
// is set, the last message of every completed node is logged at debug level.
func NewLoggingListener(logger log.Logger, includeState bool) *LoggingListener {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingListener{logger: logger, includeState: includeState}
}

// OnNodeEvent implements the NodeListener interface
func (l *LoggingListener) OnNodeEvent(_ context.Context, ev Event) {
	switch ev.Type {
	case EventChainStart:
		l.logger.Info("run %s started at %s", ev.RunID, ev.Next)
	case NodeEventStart:
		l.logger.Debug("run %s step %d: node %s started", ev.RunID, ev.Step, ev.Node)
	case NodeEventComplete:
		l.logger.Info("run %s step %d: node %s completed in %v (+%d messages)",
			ev.RunID, ev.Step, ev.Node, ev.Duration, len(ev.Update.Messages()))
		if l.includeState {
			if msg, ok := ev.State.LastMessage(); ok {
				l.logger.Debug("run %s last message [%s]: %s", ev.RunID, msg.Role, summarize(msg))
			}
		}
	case NodeEventError:
		l.logger.Error("run %s step %d: node %s failed: %v", ev.RunID, ev.Step, ev.Node, ev.Err)
	case EventEdgeTraversal:
		l.logger.Debug("run %s: %s -> %s", ev.RunID, ev.Node, ev.Next)
	case EventChainEnd:
		l.logger.Info("run %s finished after %d steps in %v", ev.RunID, ev.Step, ev.Duration)
	case EventChainError:
		l.logger.Error("run %s aborted at %s: %v", ev.RunID, ev.Node, ev.Err)
	}
}

func summarize(msg llms.MessageContent) string {
	var parts []string
	for _, p := range msg.Parts {
		switch v := p.(type) {
		case llms.TextContent:
			parts = append(parts, v.Text)
		case llms.ToolCall:
			if v.FunctionCall != nil {
				parts = append(parts, "call "+v.FunctionCall.Name+"("+v.FunctionCall.Arguments+")")
			}
		case llms.ToolCallResponse:
			parts = append(parts, v.Name+" -> "+v.Content)
		}
	}
	s := strings.Join(parts, " | ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
