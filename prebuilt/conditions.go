package prebuilt

import (
	"context"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/tmc/langchaingo/llms"
)

// Route keys returned by the conditions in this package.
const (
	RouteTools   = "tools"
	RouteExplain = "explain"
)

// HasToolCalls reports whether the last message of state requests tool calls.
func HasToolCalls(state graph.State) bool {
	lastMsg, ok := state.LastMessage()
	if !ok {
		return false
	}
	return len(ToolCalls(lastMsg)) > 0
}

// ToolsCondition routes to "tools" when the last message requests tool calls
// and to END otherwise.
func ToolsCondition(ctx context.Context, state graph.State) string {
	return ToolsConditionOr(graph.END)(ctx, state)
}

// ToolsConditionOr routes to "tools" when the last message requests tool
// calls and to next otherwise.
func ToolsConditionOr(next string) graph.RouterFunc {
	return func(_ context.Context, state graph.State) string {
		switch {
		case HasToolCalls(state):
			return RouteTools
		default:
			return next
		}
	}
}

// ExplainCondition routes tool calls to "tools", a final answer that follows
// a tool result to "explain", and everything else to END.
func ExplainCondition(_ context.Context, state graph.State) string {
	msgs := state.Messages()
	switch {
	case HasToolCalls(state):
		return RouteTools
	case len(msgs) >= 2 && msgs[len(msgs)-2].Role == llms.ChatMessageTypeTool:
		return RouteExplain
	default:
		return graph.END
	}
}
