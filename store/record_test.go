package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/log"
	"github.com/pilgrim-ai/pilgrim/store"
	"github.com/pilgrim-ai/pilgrim/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func conversation() []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "Which tables?"),
		{Role: llms.ChatMessageTypeAI, Parts: []llms.ContentPart{llms.ToolCall{
			ID: "c1", Type: "function",
			FunctionCall: &llms.FunctionCall{Name: "sql_db_list_tables", Arguments: `{"input":""}`},
		}}},
		{Role: llms.ChatMessageTypeTool, Parts: []llms.ContentPart{llms.ToolCallResponse{
			ToolCallID: "c1", Name: "sql_db_list_tables", Content: "artists, albums",
		}}},
		llms.TextParts(llms.ChatMessageTypeAI, "artists and albums"),
	}
}

func TestEncodeDecodeMessages(t *testing.T) {
	msgs := conversation()
	encoded := store.EncodeMessages(msgs)
	require.Len(t, encoded, 4)
	assert.Equal(t, store.PartToolCall, encoded[1].Parts[0].Type)
	assert.Equal(t, store.PartToolResult, encoded[2].Parts[0].Type)

	assert.Equal(t, msgs, store.DecodeMessages(encoded))
}

func TestNewRunRecord(t *testing.T) {
	start := time.Now()
	state := graph.NewMessagesState(conversation()...)

	r := store.NewRunRecord("run-1", state, 3, nil, start, start.Add(time.Second))
	assert.Equal(t, "Which tables?", r.Question)
	assert.Equal(t, "artists and albums", r.Answer)
	assert.Equal(t, store.StatusSucceeded, r.Status)
	assert.Equal(t, time.Second, r.Duration())
	assert.Equal(t, state.Messages(), r.State().Messages())

	failed := store.NewRunRecord("run-2", state, 1, errors.New("boom"), start, start)
	assert.Equal(t, store.StatusFailed, failed.Status)
	assert.Equal(t, "boom", failed.Error)
}

func TestRecorderSavesFinishedRuns(t *testing.T) {
	runs := memory.NewMemoryRunStore()
	recorder := store.NewRecorder(runs, log.Discard)

	g := graph.NewStateGraph()
	g.AddNode("answer", "answer", func(context.Context, graph.State) (graph.State, error) {
		return graph.MessagesUpdate(llms.TextParts(llms.ChatMessageTypeAI, "42")), nil
	})
	g.AddEdge("answer", graph.END)
	g.SetEntryPoint("answer")
	compiled, err := g.Compile()
	require.NoError(t, err)

	ctx := context.Background()
	_, err = compiled.Invoke(ctx,
		graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, "meaning?")),
		graph.WithListeners(recorder), graph.WithRunID("ok"))
	require.NoError(t, err)

	r, err := runs.Load(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "meaning?", r.Question)
	assert.Equal(t, "42", r.Answer)
	assert.Equal(t, 1, r.Steps)
	assert.False(t, r.FinishedAt.Before(r.StartedAt))
}

func TestRecorderSavesFailedRuns(t *testing.T) {
	runs := memory.NewMemoryRunStore()
	recorder := store.NewRecorder(runs, log.Discard)

	g := graph.NewStateGraph()
	g.AddNode("fail", "fail", func(context.Context, graph.State) (graph.State, error) {
		return nil, errors.New("model offline")
	})
	g.AddEdge("fail", graph.END)
	g.SetEntryPoint("fail")
	compiled, err := g.Compile()
	require.NoError(t, err)

	ctx := context.Background()
	_, err = compiled.Invoke(ctx,
		graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, "q")),
		graph.WithListeners(recorder), graph.WithRunID("bad"))
	require.Error(t, err)

	r, err := runs.Load(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, r.Status)
	assert.Contains(t, r.Error, "model offline")
	assert.Len(t, r.Messages, 1)
}
