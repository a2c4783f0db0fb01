package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CompiledGraph is the validated, immutable form of a StateGraph. It is safe
// to run concurrently; every run owns its own State.
type CompiledGraph struct {
	nodes          map[string]Node
	nodeOrder      []string
	fixedEdges     map[string]string
	conditional    map[string]ConditionalEdge
	entryPoint     string
	schema         *Schema
	terminalPolicy TerminalPolicy
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	maxSteps  int
	runID     string
	listeners []NodeListener
}

// WithMaxSteps aborts the run with a *GraphExecutionLimitError once n nodes
// have executed and another one is due. Zero disables the guard.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) {
		c.maxSteps = n
	}
}

// WithRunID sets the identifier reported to listeners. A random UUID is used otherwise.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithListeners registers listeners for this run.
func WithListeners(listeners ...NodeListener) RunOption {
	return func(c *runConfig) {
		c.listeners = append(c.listeners, listeners...)
	}
}

// EntryPoint returns the entry node name.
func (cg *CompiledGraph) EntryPoint() string {
	return cg.entryPoint
}

// Nodes returns the nodes in registration order.
func (cg *CompiledGraph) Nodes() []Node {
	out := make([]Node, 0, len(cg.nodeOrder))
	for _, name := range cg.nodeOrder {
		out = append(out, cg.nodes[name])
	}
	return out
}

// Edges returns the fixed edges in node registration order.
func (cg *CompiledGraph) Edges() []Edge {
	var out []Edge
	for _, name := range cg.nodeOrder {
		if to, ok := cg.fixedEdges[name]; ok {
			out = append(out, Edge{From: name, To: to})
		}
	}
	return out
}

// ConditionalEdges returns the conditional edges in node registration order.
func (cg *CompiledGraph) ConditionalEdges() []ConditionalEdge {
	var out []ConditionalEdge
	for _, name := range cg.nodeOrder {
		if ce, ok := cg.conditional[name]; ok {
			out = append(out, ce)
		}
	}
	return out
}

// TerminalPolicy returns the policy the graph was compiled with.
func (cg *CompiledGraph) TerminalPolicy() TerminalPolicy {
	return cg.terminalPolicy
}

// Invoke runs the graph from the entry point until END is reached.
//
// Each step invokes the current node, merges its update into the state and
// picks the next node: the fixed edge if there is one, otherwise the
// conditional router evaluated against the updated state. On failure the
// state accumulated so far is returned together with the error.
func (cg *CompiledGraph) Invoke(ctx context.Context, initial State, opts ...RunOption) (State, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	ctx = ContextWithRunID(ctx, cfg.runID)

	r := &run{graph: cg, cfg: cfg, state: initial.Clone()}
	return r.execute(ctx)
}

type run struct {
	graph *CompiledGraph
	cfg   runConfig
	state State
	step  int
}

func (r *run) execute(ctx context.Context) (State, error) {
	started := time.Now()
	r.emit(ctx, Event{Type: EventChainStart, Node: START, Next: r.graph.entryPoint, State: r.state})

	current := r.graph.entryPoint
	for current != END {
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, current, fmt.Errorf("run cancelled before node %s: %w", current, err))
		}
		if r.cfg.maxSteps > 0 && r.step >= r.cfg.maxSteps {
			return r.fail(ctx, current, &GraphExecutionLimitError{
				Limit: r.cfg.maxSteps,
				Node:  current,
				State: r.state,
			})
		}

		next, err := r.runStep(ctx, current)
		if err != nil {
			return r.fail(ctx, current, err)
		}
		current = next
	}

	r.emit(ctx, Event{Type: EventChainEnd, Node: END, State: r.state, Duration: time.Since(started)})
	return r.state, nil
}

// runStep executes one node and resolves the node that follows it.
func (r *run) runStep(ctx context.Context, name string) (string, error) {
	node := r.graph.nodes[name]
	r.step++
	stepCtx := withStep(ctx, r.step)

	r.emit(stepCtx, Event{Type: NodeEventStart, Node: name, State: r.state})
	started := time.Now()

	update, err := invokeNode(stepCtx, node, r.state)
	if err != nil {
		nodeErr := &NodeError{Node: name, Step: r.step, Err: err}
		r.emit(stepCtx, Event{Type: NodeEventError, Node: name, State: r.state, Err: nodeErr, Duration: time.Since(started)})
		return "", nodeErr
	}

	merged, err := r.graph.schema.Update(r.state, update)
	if err != nil {
		nodeErr := &NodeError{Node: name, Step: r.step, Err: fmt.Errorf("merge update: %w", err)}
		r.emit(stepCtx, Event{Type: NodeEventError, Node: name, State: r.state, Err: nodeErr, Duration: time.Since(started)})
		return "", nodeErr
	}
	r.state = merged
	r.emit(stepCtx, Event{Type: NodeEventComplete, Node: name, State: r.state, Update: update, Duration: time.Since(started)})

	next, err := r.graph.resolveNext(stepCtx, name, r.state)
	if err != nil {
		return "", err
	}
	r.emit(stepCtx, Event{Type: EventEdgeTraversal, Node: name, Next: next, State: r.state})
	return next, nil
}

func (r *run) fail(ctx context.Context, node string, err error) (State, error) {
	r.emit(ctx, Event{Type: EventChainError, Node: node, State: r.state, Err: err})
	return r.state, err
}

func (r *run) emit(ctx context.Context, ev Event) {
	if len(r.cfg.listeners) == 0 {
		return
	}
	ev.RunID = r.cfg.runID
	ev.Step = r.step
	ev.Timestamp = time.Now()
	for _, l := range r.cfg.listeners {
		l.OnNodeEvent(ctx, ev)
	}
}

// invokeNode calls the node function, turning a panic into an error.
func invokeNode(ctx context.Context, node Node, state State) (update State, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return node.Function(ctx, state)
}

// resolveNext picks the node that follows current given the updated state.
func (cg *CompiledGraph) resolveNext(ctx context.Context, current string, state State) (string, error) {
	if to, ok := cg.fixedEdges[current]; ok {
		return to, nil
	}
	ce, ok := cg.conditional[current]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
	}
	key := ce.Router(ctx, state)
	to, ok := ce.Routes[key]
	if !ok {
		return "", fmt.Errorf("%w: %q from node %s (routes: %v)", ErrUnmappedRoute, key, current, sortedKeys(ce.Routes))
	}
	return to, nil
}

// unreachableNodes lists nodes no path from the entry point visits, in registration order.
func (cg *CompiledGraph) unreachableNodes() []string {
	seen := map[string]bool{cg.entryPoint: true}
	queue := []string{cg.entryPoint}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		var next []string
		if to, ok := cg.fixedEdges[name]; ok {
			next = append(next, to)
		}
		if ce, ok := cg.conditional[name]; ok {
			next = append(next, ce.Destinations()...)
		}
		for _, to := range next {
			if to == END || seen[to] {
				continue
			}
			seen[to] = true
			queue = append(queue, to)
		}
	}

	var out []string
	for _, name := range cg.nodeOrder {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}
