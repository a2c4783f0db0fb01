package prebuilt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/tool"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// ScriptedModel replays choices in order and records what it was sent.
type ScriptedModel struct {
	mu       sync.Mutex
	choices  []*llms.ContentChoice
	err      error
	inputs   [][]llms.MessageContent
	options  []llms.CallOptions
	callSeen int
}

func (m *ScriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	m.inputs = append(m.inputs, messages)
	m.options = append(m.options, opts)

	if m.err != nil {
		return nil, m.err
	}
	if m.callSeen >= len(m.choices) {
		return nil, errors.New("script exhausted")
	}
	choice := m.choices[m.callSeen]
	m.callSeen++
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (m *ScriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func answer(text string) *llms.ContentChoice {
	return &llms.ContentChoice{Content: text}
}

func toolCallChoice(id, name, args string) *llms.ContentChoice {
	return &llms.ContentChoice{
		ToolCalls: []llms.ToolCall{{
			ID:   id,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}

// MockTool echoes its input, or fails when err is set.
type MockTool struct {
	name   string
	output string
	err    error
	inputs []string
}

func (t *MockTool) Name() string        { return t.name }
func (t *MockTool) Description() string { return "mock tool " + t.name }

func (t *MockTool) Call(ctx context.Context, input string) (string, error) {
	t.inputs = append(t.inputs, input)
	if t.err != nil {
		return "", t.err
	}
	if t.output != "" {
		return t.output, nil
	}
	return fmt.Sprintf("Executed %s with %s", t.name, input), nil
}

type fakeToolkit struct {
	tools []tools.Tool
}

func (k fakeToolkit) Tools() []tools.Tool { return k.tools }
func (k fakeToolkit) Dialect() string     { return "SQLite" }

func newFakeToolkit() (fakeToolkit, *MockTool) {
	list := &MockTool{name: tool.ListTablesToolName, output: "artists, albums"}
	return fakeToolkit{tools: []tools.Tool{
		list,
		&MockTool{name: tool.SchemaToolName},
		&MockTool{name: tool.QueryCheckerToolName},
		&MockTool{name: tool.QueryToolName},
	}}, list
}

func question(text string) graph.State {
	return graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, text))
}
