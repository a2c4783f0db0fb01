package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/pilgrim-ai/pilgrim/log"
)

// StateGraph is a mutable builder for a graph of named nodes over a State.
// Definition problems are collected and reported together by Compile.
type StateGraph struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node

	// nodeOrder keeps registration order for deterministic output
	nodeOrder []string

	// edges holds every fixed edge in declaration order
	edges []Edge

	// conditionalEdges holds every conditional edge in declaration order
	conditionalEdges []ConditionalEdge

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	schema         *Schema
	terminalPolicy TerminalPolicy

	// problems found while building, reported by Compile
	problems []error
}

// NewStateGraph creates a new message graph. The messages key is merged with
// AddMessages; other keys are replaced unless SetReducer declares otherwise.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:  make(map[string]Node),
		schema: NewSchema(),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function
func (g *StateGraph) AddNode(name string, description string, fn NodeFunc) {
	switch {
	case name == "" || name == END || name == START:
		g.problems = append(g.problems, fmt.Errorf("%w: %q", ErrReservedName, name))
		return
	case fn == nil:
		g.problems = append(g.problems, fmt.Errorf("node %s has no function", name))
		return
	}
	if _, exists := g.nodes[name]; exists {
		g.problems = append(g.problems, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return
	}
	g.nodes[name] = Node{
		Name:        name,
		Description: description,
		Function:    fn,
	}
	g.nodeOrder = append(g.nodeOrder, name)
}

// AddEdge adds a fixed edge between the "from" and "to" nodes. "to" may be END.
func (g *StateGraph) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds an edge whose destination is chosen at runtime.
// The router's return value is looked up in routes to find the destination.
func (g *StateGraph) AddConditionalEdge(from string, router RouterFunc, routes map[string]string) {
	if router == nil {
		g.problems = append(g.problems, fmt.Errorf("conditional edge from %s has no router", from))
		return
	}
	g.conditionalEdges = append(g.conditionalEdges, ConditionalEdge{
		From:   from,
		Router: router,
		Routes: maps.Clone(routes),
	})
}

// SetEntryPoint sets the entry point node name for the state graph
func (g *StateGraph) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetReducer declares how updates to key are merged. The default is replace.
func (g *StateGraph) SetReducer(key string, reducer Reducer) {
	if err := g.schema.RegisterReducer(key, reducer); err != nil {
		g.problems = append(g.problems, err)
	}
}

// SetTerminalPolicy declares whether conditional edges must route to END.
func (g *StateGraph) SetTerminalPolicy(policy TerminalPolicy) {
	g.terminalPolicy = policy
}

// Compile validates the graph and returns an immutable CompiledGraph.
// All problems are reported together in a *GraphDefinitionError.
func (g *StateGraph) Compile() (*CompiledGraph, error) {
	problems := slices.Clone(g.problems)
	add := func(err error) { problems = append(problems, err) }

	if g.entryPoint == "" {
		add(ErrEntryPointNotSet)
	} else if _, ok := g.nodes[g.entryPoint]; !ok {
		add(fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint))
	}

	fixed := make(map[string]string)
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			add(fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From))
			continue
		}
		if !g.isDestination(e.To) {
			add(fmt.Errorf("%w: edge target %s (from %s)", ErrNodeNotFound, e.To, e.From))
		}
		if _, dup := fixed[e.From]; dup {
			add(fmt.Errorf("%w: %s has several fixed edges", ErrMultipleEdges, e.From))
			continue
		}
		fixed[e.From] = e.To
	}

	conditional := make(map[string]ConditionalEdge)
	for _, ce := range g.conditionalEdges {
		if _, ok := g.nodes[ce.From]; !ok {
			add(fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, ce.From))
			continue
		}
		if _, dup := conditional[ce.From]; dup {
			add(fmt.Errorf("%w: %s has several conditional edges", ErrMultipleEdges, ce.From))
			continue
		}
		if _, both := fixed[ce.From]; both {
			add(fmt.Errorf("%w: %s", ErrConflictingEdges, ce.From))
		}
		if len(ce.Routes) == 0 {
			add(fmt.Errorf("%w: %s", ErrEmptyRoutes, ce.From))
		}
		toEnd := false
		for _, key := range sortedKeys(ce.Routes) {
			to := ce.Routes[key]
			if to == END {
				toEnd = true
			}
			if !g.isDestination(to) {
				add(fmt.Errorf("%w: route %q from %s targets %s", ErrNodeNotFound, key, ce.From, to))
			}
		}
		if !toEnd && len(ce.Routes) > 0 && g.terminalPolicy == TerminalRequired {
			add(fmt.Errorf("%w: %s", ErrMissingTerminalRoute, ce.From))
		}
		conditional[ce.From] = ce
	}

	for _, name := range g.nodeOrder {
		_, hasFixed := fixed[name]
		_, hasCond := conditional[name]
		if !hasFixed && !hasCond {
			add(fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name))
		}
	}

	if len(problems) == 0 && !canReachEnd(g.entryPoint, fixed, conditional) {
		add(ErrNoPathToEnd)
	}

	if len(problems) > 0 {
		return nil, &GraphDefinitionError{Problems: problems}
	}

	cg := g.buildCompiledGraph(fixed, conditional)
	for _, name := range cg.unreachableNodes() {
		log.Default().Warn("node %s is unreachable from entry point %s", name, g.entryPoint)
	}
	return cg, nil
}

func (g *StateGraph) isDestination(name string) bool {
	if name == END {
		return true
	}
	_, ok := g.nodes[name]
	return ok
}

// buildCompiledGraph copies the builder state so later mutations of g do not leak.
func (g *StateGraph) buildCompiledGraph(fixed map[string]string, conditional map[string]ConditionalEdge) *CompiledGraph {
	cond := make(map[string]ConditionalEdge, len(conditional))
	for from, ce := range conditional {
		ce.Routes = maps.Clone(ce.Routes)
		cond[from] = ce
	}
	return &CompiledGraph{
		nodes:          maps.Clone(g.nodes),
		nodeOrder:      slices.Clone(g.nodeOrder),
		fixedEdges:     maps.Clone(fixed),
		conditional:    cond,
		entryPoint:     g.entryPoint,
		schema:         g.schema.clone(),
		terminalPolicy: g.terminalPolicy,
	}
}

// canReachEnd reports whether END is reachable from entry, propagating
// backwards from END until nothing changes.
func canReachEnd(entry string, fixed map[string]string, conditional map[string]ConditionalEdge) bool {
	reach := map[string]bool{END: true}
	for changed := true; changed; {
		changed = false
		for from, to := range fixed {
			if !reach[from] && reach[to] {
				reach[from] = true
				changed = true
			}
		}
		for from, ce := range conditional {
			if reach[from] {
				continue
			}
			for _, to := range ce.Routes {
				if reach[to] {
					reach[from] = true
					changed = true
					break
				}
			}
		}
	}
	return reach[entry]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsDefinitionError reports whether err is a *GraphDefinitionError.
func IsDefinitionError(err error) bool {
	var defErr *GraphDefinitionError
	return errors.As(err, &defErr)
}
