package prebuilt

import (
	"encoding/json"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// ParameterizedTool is a tool that describes its own JSON schema.
// Tools that do not implement it take a single "input" string.
type ParameterizedTool interface {
	tools.Tool
	Parameters() map[string]any
}

// ToolDefinitions converts tools to function definitions for llms.WithTools.
func ToolDefinitions(ts []tools.Tool) []llms.Tool {
	defs := make([]llms.Tool, 0, len(ts))
	for _, t := range ts {
		params := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{
					"type":        "string",
					"description": "The input query for the tool",
				},
			},
			"required":             []string{"input"},
			"additionalProperties": false,
		}
		if pt, ok := t.(ParameterizedTool); ok {
			params = pt.Parameters()
		}
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}
	return defs
}

// ToolInput extracts the string passed to tools.Tool.Call from the JSON
// arguments of a tool call: the "input" field, the only string field, or the
// raw arguments when neither applies.
func ToolInput(arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return arguments
	}
	if v, ok := args["input"].(string); ok {
		return v
	}
	if len(args) == 1 {
		for _, v := range args {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return arguments
}

// MessageText joins the text parts of a message.
func MessageText(msg llms.MessageContent) string {
	var texts []string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			texts = append(texts, p.Text)
		case llms.ToolCallResponse:
			texts = append(texts, p.Content)
		}
	}
	return strings.Join(texts, "\n")
}

// ToolCalls returns the tool calls carried by msg, in order.
func ToolCalls(msg llms.MessageContent) []llms.ToolCall {
	var calls []llms.ToolCall
	for _, part := range msg.Parts {
		if tc, ok := part.(llms.ToolCall); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}
