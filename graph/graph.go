package graph

import (
	"context"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

// START is the name used for the virtual node preceding the entry point in
// listener events and diagrams.
const START = "START"

// NodeFunc is the function executed by a node. It receives the current state
// and returns a partial update that is merged into it. Implementations must
// not mutate the state they receive.
type NodeFunc func(ctx context.Context, state State) (State, error)

// RouterFunc picks the route key for a conditional edge. It must be a pure
// function of the state it receives.
type RouterFunc func(ctx context.Context, state State) string

// Node represents a node in the graph.
type Node struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function is the function associated with the node.
	Function NodeFunc
}

// Edge represents a fixed edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// ConditionalEdge routes from a node to one of several destinations chosen
// at runtime by Router. Routes maps every key the router may return to a
// destination node name or END.
type ConditionalEdge struct {
	From   string
	Router RouterFunc
	Routes map[string]string
}

// Destinations returns the distinct destinations of the edge.
func (e ConditionalEdge) Destinations() []string {
	seen := make(map[string]bool, len(e.Routes))
	var out []string
	for _, key := range sortedKeys(e.Routes) {
		to := e.Routes[key]
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	return out
}

// TerminalPolicy declares whether conditional edges must include a route to END.
type TerminalPolicy int

const (
	// TerminalRequired rejects conditional edges whose routes never reach END.
	TerminalRequired TerminalPolicy = iota
	// TerminalOptional accepts conditional edges without a route to END; such
	// graphs must reach END through a fixed edge elsewhere.
	TerminalOptional
)

func (p TerminalPolicy) String() string {
	switch p {
	case TerminalRequired:
		return "terminal-required"
	case TerminalOptional:
		return "terminal-optional"
	default:
		return "unknown"
	}
}

// RoutesTo builds an identity route map: each destination is also its own route key.
//
//	g.AddConditionalEdge("agent", router, graph.RoutesTo("tools", graph.END))
func RoutesTo(destinations ...string) map[string]string {
	routes := make(map[string]string, len(destinations))
	for _, d := range destinations {
		routes[d] = d
	}
	return routes
}
