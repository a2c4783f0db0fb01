package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

var (
	// ErrUnknownTool is returned when a tool call names a tool the node does not have.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMalformedToolCall is returned for a tool call without a function.
	ErrMalformedToolCall = errors.New("malformed tool call")
)

// ToolNodeOption configures NewToolNode.
type ToolNodeOption func(*toolNodeConfig)

type toolNodeConfig struct {
	handleErrors bool
	logger       log.Logger
}

// WithToolErrorHandling reports tool failures and unknown tool names to the
// model as "Error: ..." results instead of failing the run.
func WithToolErrorHandling() ToolNodeOption {
	return func(c *toolNodeConfig) {
		c.handleErrors = true
	}
}

// WithToolLogger sets the logger used to report tool invocations.
func WithToolLogger(logger log.Logger) ToolNodeOption {
	return func(c *toolNodeConfig) {
		c.logger = logger
	}
}

// NewToolNode creates a node executing the tool calls of the last message.
// Calls run in order and each produces one tool message answering it by ID.
// A last message without tool calls yields an empty update.
func NewToolNode(ts []tools.Tool, opts ...ToolNodeOption) graph.NodeFunc {
	cfg := toolNodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}

	byName := make(map[string]tools.Tool, len(ts))
	for _, t := range ts {
		byName[t.Name()] = t
	}

	return func(ctx context.Context, state graph.State) (graph.State, error) {
		lastMsg, ok := state.LastMessage()
		if !ok {
			return nil, nil
		}

		var toolMessages []llms.MessageContent
		for _, tc := range ToolCalls(lastMsg) {
			var (
				name string
				res  string
				err  error
			)
			if tc.FunctionCall == nil {
				err = fmt.Errorf("%w: call %s has no function", ErrMalformedToolCall, tc.ID)
				if !cfg.handleErrors {
					return nil, err
				}
			} else {
				name = tc.FunctionCall.Name
				res, err = callTool(ctx, byName, name, tc.FunctionCall.Arguments)
			}
			if err != nil {
				if !cfg.handleErrors {
					return nil, fmt.Errorf("tool %s: %w", name, err)
				}
				cfg.logger.Warn("tool %s failed: %v", name, err)
				res = fmt.Sprintf("Error: %v", err)
			} else {
				cfg.logger.Debug("tool %s returned %d bytes", name, len(res))
			}

			toolMessages = append(toolMessages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       name,
						Content:    res,
					},
				},
			})
		}

		if len(toolMessages) == 0 {
			return nil, nil
		}
		return graph.MessagesUpdate(toolMessages...), nil
	}
}

func callTool(ctx context.Context, byName map[string]tools.Tool, name, arguments string) (string, error) {
	t, ok := byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Call(ctx, ToolInput(arguments))
}

// NewSingleToolNode creates a node that feeds the text of the last message to
// t and appends the tool output as an AI message.
func NewSingleToolNode(t tools.Tool) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		lastMsg, ok := state.LastMessage()
		if !ok {
			return nil, fmt.Errorf("tool %s: state has no messages", t.Name())
		}
		out, err := t.Call(ctx, MessageText(lastMsg))
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name(), err)
		}
		return graph.MessagesUpdate(llms.TextParts(llms.ChatMessageTypeAI, out)), nil
	}
}
