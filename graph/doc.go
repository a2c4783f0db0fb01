// Package graph is the execution engine of pilgrim: a directed graph of named
// nodes over a shared, append-only message state.
//
// # Building a graph
//
//	g := graph.NewStateGraph()
//	g.AddNode("agent", "tool-aware model", agentNode)
//	g.AddNode("tools", "tool execution", toolNode)
//	g.SetEntryPoint("agent")
//	g.AddConditionalEdge("agent", router, graph.RoutesTo("tools", graph.END))
//	g.AddEdge("tools", "agent")
//
//	compiled, err := g.Compile()
//
// Compile reports every definition problem at once in a
// *GraphDefinitionError: missing or unknown entry point, dangling edge
// targets, nodes with both a fixed and a conditional edge, dead ends, and
// conditional edges without a route to END when the terminal policy is
// TerminalRequired. The compiled graph is immutable.
//
// # State
//
// State is a map whose "messages" key holds []llms.MessageContent. Node
// updates are merged with per-key reducers: messages are always appended,
// other keys are replaced unless SetReducer declares otherwise.
//
// # Running
//
//	final, err := compiled.Invoke(ctx, graph.NewMessagesState(
//		llms.TextParts(llms.ChatMessageTypeHuman, "How many users are there?"),
//	), graph.WithMaxSteps(25))
//
// Exactly one node runs at a time. After each node the next one is the
// target of its fixed edge, or the destination its router picks from the
// updated state. The run ends at END, on the first node error (*NodeError),
// or when the optional step guard trips (*GraphExecutionLimitError). The
// engine never retries; WithNodeRetry and WithNodeTimeout wrap individual
// nodes when they need it.
//
// # Observing
//
// NodeListener implementations receive start, complete, error and edge
// events. NewLoggingListener logs them and NewOTelListener records
// OpenTelemetry spans. Stream delivers the same events over a channel.
package graph
