package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// ErrEmptyResponse is returned when the model answers without any choice.
var ErrEmptyResponse = errors.New("model returned no choices")

// LLMNodeOption configures NewLLMNode.
type LLMNodeOption func(*llmNodeConfig)

type llmNodeConfig struct {
	systemMessage string
	tools         []tools.Tool
	callOptions   []llms.CallOption
}

// WithSystemMessage prepends a system instruction to the model input. The
// instruction is not added to the state.
func WithSystemMessage(content string) LLMNodeOption {
	return func(c *llmNodeConfig) {
		c.systemMessage = content
	}
}

// WithTools binds tool definitions to every model call, so the reply may
// carry tool calls.
func WithTools(ts ...tools.Tool) LLMNodeOption {
	return func(c *llmNodeConfig) {
		c.tools = append(c.tools, ts...)
	}
}

// WithCallOptions passes extra options (temperature, streaming function, ...)
// to the model.
func WithCallOptions(opts ...llms.CallOption) LLMNodeOption {
	return func(c *llmNodeConfig) {
		c.callOptions = append(c.callOptions, opts...)
	}
}

// NewLLMNode creates a node that sends the whole message history to model and
// appends exactly one AI message built from the first choice of the reply.
func NewLLMNode(model llms.Model, opts ...LLMNodeOption) graph.NodeFunc {
	cfg := llmNodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	callOpts := cfg.callOptions
	if len(cfg.tools) > 0 {
		callOpts = append([]llms.CallOption{llms.WithTools(ToolDefinitions(cfg.tools))}, callOpts...)
	}

	return func(ctx context.Context, state graph.State) (graph.State, error) {
		messages := state.Messages()
		if cfg.systemMessage != "" {
			input := make([]llms.MessageContent, 0, len(messages)+1)
			input = append(input, llms.TextParts(llms.ChatMessageTypeSystem, cfg.systemMessage))
			messages = append(input, messages...)
		}

		resp, err := model.GenerateContent(ctx, messages, callOpts...)
		if err != nil {
			return nil, fmt.Errorf("generate content: %w", err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return nil, ErrEmptyResponse
		}

		return graph.MessagesUpdate(aiMessage(resp.Choices[0])), nil
	}
}

func aiMessage(choice *llms.ContentChoice) llms.MessageContent {
	aiMsg := llms.MessageContent{
		Role: llms.ChatMessageTypeAI,
	}
	if choice.Content != "" {
		aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		aiMsg.Parts = append(aiMsg.Parts, tc)
	}
	if len(aiMsg.Parts) == 0 {
		aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(""))
	}
	return aiMsg
}
