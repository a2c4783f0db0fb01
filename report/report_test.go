package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/store"
)

func sampleRecord(t *testing.T) *store.RunRecord {
	t.Helper()
	state := graph.State{"messages": []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "How many artists?"),
		{
			Role: llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{llms.ToolCall{
				ID:   "call_1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      "sql_db_query",
					Arguments: `{"query":"SELECT COUNT(*) FROM artists"}`,
				},
			}},
		},
		{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: "call_1",
				Name:       "sql_db_query",
				Content:    "COUNT(*)\n3",
			}},
		},
		llms.TextParts(llms.ChatMessageTypeAI, "There are <b>3</b> artists."),
	}}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return store.NewRunRecord("run-1", state, 3, nil, start, start.Add(1500*time.Millisecond))
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleRecord(t))

	assert.Contains(t, md, "# Run run-1")
	assert.Contains(t, md, "- **Question:** How many artists?")
	assert.Contains(t, md, "- **Status:** succeeded")
	assert.Contains(t, md, "- **Steps:** 3")
	assert.Contains(t, md, "- **Duration:** 1.5s")
	assert.Contains(t, md, "## Answer")
	assert.Contains(t, md, "### 2. ai")
	assert.Contains(t, md, "Calls `sql_db_query` (call_1)")
	assert.Contains(t, md, "\"query\": \"SELECT COUNT(*) FROM artists\"")
	assert.Contains(t, md, "Result of `sql_db_query` (call_1)")
	assert.NotContains(t, md, "**Error:**")
}

func TestMarkdownFailedRun(t *testing.T) {
	state := graph.State{"messages": []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "multi\n  line   question"),
	}}
	r := store.NewRunRecord("run-2", state, 1, errors.New("boom"), time.Time{}, time.Time{})

	md := Markdown(r)
	assert.Contains(t, md, "- **Question:** multi line question")
	assert.Contains(t, md, "- **Status:** failed")
	assert.Contains(t, md, "- **Error:** `boom`")
	assert.NotContains(t, md, "## Answer")
	assert.NotContains(t, md, "**Duration:**")
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", prettyJSON(`{"a":1}`))
	assert.Equal(t, "not json", prettyJSON("not json"))
}

func TestMarkdownToHTMLSanitizes(t *testing.T) {
	out := string(MarkdownToHTML("# Title\n\n<script>alert(1)</script>\n\n[link](https://example.com)"))

	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleRecord(t), "flowchart TD\n  agent --> tools")
	require.NoError(t, err)

	page := string(out)
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>pilgrim run run-1</title>")
	assert.Contains(t, page, "<h2 id=\"transcript\">Transcript</h2>")
	assert.Contains(t, page, "agent --&gt; tools")
}

func TestHTMLWithoutDiagram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleRecord(t), ""))
	assert.NotContains(t, buf.String(), `class="diagram"`)
}

func TestTerminal(t *testing.T) {
	out := Terminal(sampleRecord(t), DefaultTheme())

	assert.Contains(t, out, "pilgrim run run-1")
	assert.Contains(t, out, "human:")
	assert.Contains(t, out, "How many artists?")
	assert.Contains(t, out, "-> sql_db_query(")
	assert.Contains(t, out, "There are <b>3</b> artists.")
	assert.Contains(t, out, "succeeded in 3 steps, 1.5s")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcd", 2))
}
