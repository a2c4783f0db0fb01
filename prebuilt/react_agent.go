package prebuilt

import (
	"fmt"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Node names used by NewReactAgent.
const (
	NodeAgent   = "agent"
	NodeTools   = "tools"
	NodeExplain = "explain"
)

// DefaultExplanationPrompt instructs the explanation node.
const DefaultExplanationPrompt = `You explain how an answer was obtained.
Summarize in a few plain sentences which tools were called, what they returned
and how those results led to the final answer. Do not repeat raw tool output.`

// AgentOption configures the agents of this package.
type AgentOption func(*agentConfig)

type agentConfig struct {
	systemMessage     string
	explain           bool
	explanationPrompt string
	toolNodeOptions   []ToolNodeOption
	callOptions       []llms.CallOption
}

// WithPrompt sets the system instruction of the tool-aware model node.
func WithPrompt(prompt string) AgentOption {
	return func(c *agentConfig) {
		c.systemMessage = prompt
	}
}

// WithExplanation adds an "explain" node that summarizes tool-assisted answers.
func WithExplanation() AgentOption {
	return func(c *agentConfig) {
		c.explain = true
	}
}

// WithExplanationPrompt overrides DefaultExplanationPrompt. It implies WithExplanation.
func WithExplanationPrompt(prompt string) AgentOption {
	return func(c *agentConfig) {
		c.explain = true
		c.explanationPrompt = prompt
	}
}

// WithToolNodeOptions configures the tool execution node.
func WithToolNodeOptions(opts ...ToolNodeOption) AgentOption {
	return func(c *agentConfig) {
		c.toolNodeOptions = append(c.toolNodeOptions, opts...)
	}
}

// WithModelOptions passes call options to every model call of the agent.
func WithModelOptions(opts ...llms.CallOption) AgentOption {
	return func(c *agentConfig) {
		c.callOptions = append(c.callOptions, opts...)
	}
}

// NewReactAgent creates a tool-calling agent: the model node "agent" loops
// with the "tools" node until it answers without tool calls.
func NewReactAgent(model llms.Model, inputTools []tools.Tool, opts ...AgentOption) (*graph.CompiledGraph, error) {
	cfg := agentConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return buildToolAgent(NodeAgent, "tool-aware model", model, inputTools, cfg)
}

// buildToolAgent wires agentNode <-> tools, with an optional explanation step.
func buildToolAgent(agentNode, description string, model llms.Model, inputTools []tools.Tool, cfg agentConfig) (*graph.CompiledGraph, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}

	llmOpts := []LLMNodeOption{WithTools(inputTools...), WithCallOptions(cfg.callOptions...)}
	if cfg.systemMessage != "" {
		llmOpts = append(llmOpts, WithSystemMessage(cfg.systemMessage))
	}

	workflow := graph.NewStateGraph()
	workflow.AddNode(agentNode, description, NewLLMNode(model, llmOpts...))
	workflow.AddNode(NodeTools, "tool execution", NewToolNode(inputTools, cfg.toolNodeOptions...))
	workflow.SetEntryPoint(agentNode)
	workflow.AddEdge(NodeTools, agentNode)

	if !cfg.explain {
		workflow.AddConditionalEdge(agentNode, ToolsCondition, graph.RoutesTo(NodeTools, graph.END))
		return workflow.Compile()
	}

	prompt := cfg.explanationPrompt
	if prompt == "" {
		prompt = DefaultExplanationPrompt
	}
	workflow.AddNode(NodeExplain, "explanation of tool-assisted answers",
		NewLLMNode(model, WithSystemMessage(prompt), WithCallOptions(cfg.callOptions...)))
	workflow.AddConditionalEdge(agentNode, ExplainCondition, map[string]string{
		RouteTools:   NodeTools,
		RouteExplain: NodeExplain,
		graph.END:    graph.END,
	})
	workflow.AddEdge(NodeExplain, graph.END)

	return workflow.Compile()
}
