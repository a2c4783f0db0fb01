package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrReservedName is returned when a node uses an empty or reserved name.
	ErrReservedName = errors.New("reserved node name")

	// ErrConflictingEdges is returned when a node has both a fixed and a conditional edge.
	ErrConflictingEdges = errors.New("node has both fixed and conditional edges")

	// ErrMultipleEdges is returned when a node declares more than one outgoing edge of the same kind.
	ErrMultipleEdges = errors.New("node has more than one outgoing edge")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMissingTerminalRoute is returned when a conditional edge has no route to END
	// under the TerminalRequired policy.
	ErrMissingTerminalRoute = errors.New("conditional edge has no route to END")

	// ErrNoPathToEnd is returned when END cannot be reached from the entry point.
	ErrNoPathToEnd = errors.New("no path from entry point to END")

	// ErrEmptyRoutes is returned when a conditional edge declares no routes.
	ErrEmptyRoutes = errors.New("conditional edge has no routes")

	// ErrUnmappedRoute is returned at runtime when a router returns a key
	// that is not present in its route map.
	ErrUnmappedRoute = errors.New("router returned unmapped route")
)

// GraphDefinitionError reports every problem found while compiling a graph.
// It unwraps to the individual problems, so errors.Is works with the
// sentinel errors above.
type GraphDefinitionError struct {
	Problems []error
}

func (e *GraphDefinitionError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid graph definition: " + e.Problems[0].Error()
	}
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("invalid graph definition (%d problems): %s", len(e.Problems), strings.Join(msgs, "; "))
}

func (e *GraphDefinitionError) Unwrap() []error {
	return e.Problems
}

// GraphExecutionLimitError is returned when a run exceeds its step budget.
type GraphExecutionLimitError struct {
	// Limit is the configured maximum number of node invocations.
	Limit int
	// Node is the node that would have run next.
	Node string
	// State is the state accumulated before the run was aborted.
	State State
}

func (e *GraphExecutionLimitError) Error() string {
	return fmt.Sprintf("graph execution exceeded %d steps (next node %s)", e.Limit, e.Node)
}

// NodeError wraps a failure returned by a node function.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("error in node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
