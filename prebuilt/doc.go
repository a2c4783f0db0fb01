// Package prebuilt provides ready-to-use agent graphs and the node and router
// building blocks they are made of.
//
// # Building Blocks
//
//   - NewLLMNode calls a chat model with the conversation and appends its
//     reply. Tools bound with WithTools are advertised to the model.
//   - NewToolNode executes the tool calls of the last AI message and appends
//     one tool message per call, in order.
//   - NewSingleToolNode feeds the last message to one tool.
//   - ToolsCondition and ExplainCondition route on the last message.
//
// # SQL Agent
//
// NewSQLAgent builds the question answering graph over a SQL toolkit:
//
//	START -> llm_with_sql_tools -[tools]-> tools -> llm_with_sql_tools
//	                            -[__end__]-> END
//
// With WithExplanation an "explain" node summarizes tool-assisted answers:
//
//	toolkit, _ := tool.NewSQLToolkit(db, llm)
//	agent, err := prebuilt.NewSQLAgent(llm, toolkit, prebuilt.WithExplanation())
//	if err != nil {
//		return err
//	}
//	state, err := agent.Invoke(ctx,
//		graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, "How many artists are there?")),
//		graph.WithMaxSteps(25),
//	)
//
// # ReAct Agent
//
// NewReactAgent wires the same loop around arbitrary langchaingo tools:
//
//	agent, err := prebuilt.NewReactAgent(llm, []tools.Tool{calculator},
//		prebuilt.WithPrompt("Use the calculator for arithmetic."),
//		prebuilt.WithToolNodeOptions(prebuilt.WithToolErrorHandling()),
//	)
//
// Tool failures halt the run with a *graph.NodeError unless
// WithToolErrorHandling is set, in which case the error text is returned to
// the model as the tool result.
package prebuilt
