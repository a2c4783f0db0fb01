package graph

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pilgrim-ai/pilgrim/graph"

// OTelListener records OpenTelemetry spans: one per run and one per node,
// nested under the run span. Edge traversals become span events.
type OTelListener struct {
	tracer trace.Tracer

	mu   sync.Mutex
	runs map[string]*runSpans
}

type runSpans struct {
	ctx  context.Context
	run  trace.Span
	node trace.Span
}

// NewOTelListener creates a listener using tracer, or the global tracer
// provider when tracer is nil.
func NewOTelListener(tracer trace.Tracer) *OTelListener {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &OTelListener{
		tracer: tracer,
		runs:   make(map[string]*runSpans),
	}
}

// OnNodeEvent implements the NodeListener interface
func (l *OTelListener) OnNodeEvent(ctx context.Context, ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ev.Type == EventChainStart {
		spanCtx, span := l.tracer.Start(ctx, "graph.run",
			trace.WithAttributes(
				attribute.String("graph.run_id", ev.RunID),
				attribute.String("graph.entry_point", ev.Next),
			))
		l.runs[ev.RunID] = &runSpans{ctx: spanCtx, run: span}
		return
	}

	rs, ok := l.runs[ev.RunID]
	if !ok {
		return
	}

	switch ev.Type {
	case NodeEventStart:
		_, rs.node = l.tracer.Start(rs.ctx, "graph.node "+ev.Node,
			trace.WithAttributes(
				attribute.String("graph.node", ev.Node),
				attribute.Int("graph.step", ev.Step),
			))
	case NodeEventComplete:
		if rs.node != nil {
			rs.node.SetAttributes(attribute.Int("graph.messages_added", len(ev.Update.Messages())))
			rs.node.End()
			rs.node = nil
		}
	case NodeEventError:
		if rs.node != nil {
			rs.node.RecordError(ev.Err)
			rs.node.SetStatus(codes.Error, ev.Err.Error())
			rs.node.End()
			rs.node = nil
		}
	case EventEdgeTraversal:
		rs.run.AddEvent("graph.edge", trace.WithAttributes(
			attribute.String("graph.from", ev.Node),
			attribute.String("graph.to", ev.Next),
		))
	case EventChainEnd:
		rs.run.SetAttributes(
			attribute.Int("graph.steps", ev.Step),
			attribute.Int("graph.messages", len(ev.State.Messages())),
		)
		rs.run.End()
		delete(l.runs, ev.RunID)
	case EventChainError:
		if rs.node != nil {
			rs.node.End()
		}
		rs.run.RecordError(ev.Err)
		rs.run.SetStatus(codes.Error, ev.Err.Error())
		rs.run.SetAttributes(attribute.Int("graph.steps", ev.Step))
		rs.run.End()
		delete(l.runs, ev.RunID)
	}
}
