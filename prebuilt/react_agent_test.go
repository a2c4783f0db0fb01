package prebuilt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/pilgrim-ai/pilgrim/graph"
)

func TestReactAgentSequentialToolCalls(t *testing.T) {
	count := &MockTool{name: "count_rows", output: "275"}
	model := &ScriptedModel{choices: []*llms.ContentChoice{
		toolCallChoice("call-1", "count_rows", `{"input": "artists"}`),
		toolCallChoice("call-2", "count_rows", `{"input": "albums"}`),
		answer("275 artists and 275 albums."),
	}}

	agent, err := NewReactAgent(model, []tools.Tool{count})
	require.NoError(t, err)

	res, err := agent.Invoke(context.Background(), question("Count artists and albums"))
	require.NoError(t, err)

	// human, ai, tool, ai, tool, ai
	messages := res.Messages()
	require.Len(t, messages, 6)
	assert.Equal(t, llms.ChatMessageTypeTool, messages[2].Role)
	assert.Equal(t, llms.ChatMessageTypeTool, messages[4].Role)
	assert.Equal(t, []string{"artists", "albums"}, count.inputs)

	resp := messages[4].Parts[0].(llms.ToolCallResponse)
	assert.Equal(t, "call-2", resp.ToolCallID)
	assert.Equal(t, "count_rows", resp.Name)
	assert.Equal(t, "275", resp.Content)

	// The second model call sees the first tool result.
	require.Len(t, model.inputs, 3)
	assert.Len(t, model.inputs[1], 3)
	assert.Len(t, model.options[0].Tools, 1)
}

func TestReactAgentDirectAnswer(t *testing.T) {
	model := &ScriptedModel{choices: []*llms.ContentChoice{answer("No tools needed.")}}
	agent, err := NewReactAgent(model, []tools.Tool{&MockTool{name: "unused"}})
	require.NoError(t, err)

	res, err := agent.Invoke(context.Background(), question("Hello"))
	require.NoError(t, err)

	messages := res.Messages()
	require.Len(t, messages, 2)
	for _, part := range messages[1].Parts {
		_, isToolCall := part.(llms.ToolCall)
		assert.False(t, isToolCall)
	}
}

func TestReactAgentToolErrorHalts(t *testing.T) {
	boom := errors.New("connection refused")
	model := &ScriptedModel{choices: []*llms.ContentChoice{
		toolCallChoice("call-1", "flaky", `{"input": "x"}`),
		answer("unreachable"),
	}}
	agent, err := NewReactAgent(model, []tools.Tool{&MockTool{name: "flaky", err: boom}})
	require.NoError(t, err)

	res, err := agent.Invoke(context.Background(), question("Try it"))
	require.ErrorIs(t, err, boom)

	var nodeErr *graph.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, NodeTools, nodeErr.Node)
	assert.Len(t, res.Messages(), 2)
	assert.Len(t, model.inputs, 1)
}

func TestReactAgentToolErrorHandled(t *testing.T) {
	model := &ScriptedModel{choices: []*llms.ContentChoice{
		toolCallChoice("call-1", "flaky", `{"input": "x"}`),
		answer("The tool failed, please retry later."),
	}}
	agent, err := NewReactAgent(model,
		[]tools.Tool{&MockTool{name: "flaky", err: errors.New("connection refused")}},
		WithToolNodeOptions(WithToolErrorHandling()),
	)
	require.NoError(t, err)

	res, err := agent.Invoke(context.Background(), question("Try it"))
	require.NoError(t, err)

	messages := res.Messages()
	require.Len(t, messages, 4)
	resp := messages[2].Parts[0].(llms.ToolCallResponse)
	assert.Equal(t, "Error: connection refused", resp.Content)
}

func TestReactAgentExplanation(t *testing.T) {
	model := &ScriptedModel{choices: []*llms.ContentChoice{
		toolCallChoice("call-1", "lookup", `{"input": "x"}`),
		answer("42"),
		answer("I called lookup, which returned 42."),
	}}
	agent, err := NewReactAgent(model, []tools.Tool{&MockTool{name: "lookup", output: "42"}},
		WithExplanationPrompt("Explain briefly."),
		WithModelOptions(llms.WithTemperature(0.1)),
	)
	require.NoError(t, err)

	res, err := agent.Invoke(context.Background(), question("What is it?"))
	require.NoError(t, err)

	messages := res.Messages()
	require.Len(t, messages, 5)
	assert.Equal(t, "I called lookup, which returned 42.", MessageText(messages[4]))

	// The explanation call gets its own system prompt and no tools.
	require.Len(t, model.inputs, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.inputs[2][0].Role)
	assert.Equal(t, "Explain briefly.", MessageText(model.inputs[2][0]))
	assert.Empty(t, model.options[2].Tools)
	assert.InDelta(t, 0.1, model.options[2].Temperature, 1e-9)
}

func TestReactAgentRequiresModel(t *testing.T) {
	_, err := NewReactAgent(nil, nil)
	assert.Error(t, err)
}
