package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pilgrim-ai/pilgrim/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// checkerModel echoes the query found after the "SQL Query: " marker.
type checkerModel struct {
	prompts []string
	err     error
}

func (m *checkerModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	prompt := messages[0].Parts[0].(llms.TextContent).Text
	m.prompts = append(m.prompts, prompt)
	query := strings.SplitN(prompt, "\n", 2)[0]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: " " + query + " \n"}}}, nil
}

func (m *checkerModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newTestToolkit(t *testing.T, opts ...ToolkitOption) (*SQLToolkit, *checkerModel) {
	t.Helper()
	model := &checkerModel{}
	opts = append([]ToolkitOption{WithLogger(log.Discard)}, opts...)
	k, err := NewSQLToolkit(newTestSQLite(t, WithSampleRows(1)), model, opts...)
	require.NoError(t, err)
	return k, model
}

func TestToolkitTools(t *testing.T) {
	k, _ := newTestToolkit(t)

	var names []string
	for _, tl := range k.Tools() {
		names = append(names, tl.Name())
		assert.NotEmpty(t, tl.Description())
	}
	assert.Equal(t, []string{ListTablesToolName, SchemaToolName, QueryCheckerToolName, QueryToolName}, names)
	assert.Len(t, k.ToolMap(), 4)
	assert.Equal(t, "SQLite", k.Dialect())
}

func TestNewSQLToolkitRequiresDependencies(t *testing.T) {
	_, err := NewSQLToolkit(nil, &checkerModel{})
	assert.Error(t, err)
	_, err = NewSQLToolkit(newTestSQLite(t), nil)
	assert.Error(t, err)
}

func TestListTablesAndSchemaTools(t *testing.T) {
	k, _ := newTestToolkit(t)
	ctx := context.Background()
	tools := k.ToolMap()

	out, err := tools[ListTablesToolName].Call(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "albums, artists", out)

	out, err = tools[SchemaToolName].Call(ctx, "artists")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE artists")

	_, err = tools[SchemaToolName].Call(ctx, "artists, ghosts")
	assert.ErrorIs(t, err, ErrTableNotFound)
	_, err = tools[SchemaToolName].Call(ctx, " ")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestQueryCheckerTool(t *testing.T) {
	k, model := newTestToolkit(t)
	checker := k.ToolMap()[QueryCheckerToolName]

	out, err := checker.Call(context.Background(), "SELECT name FROM artists")
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM artists", out)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Double check the SQLite query above")

	_, err = checker.Call(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	model.err = errors.New("offline")
	_, err = checker.Call(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, model.err)
}

func TestQueryTool(t *testing.T) {
	k, _ := newTestToolkit(t)
	query := k.ToolMap()[QueryToolName]
	ctx := context.Background()

	out, err := query.Call(ctx, "SELECT name FROM artists ORDER BY id LIMIT 2")
	require.NoError(t, err)
	assert.Equal(t, "name\nAC/DC\nAccept", out)

	_, err = query.Call(ctx, "DELETE FROM artists")
	assert.ErrorIs(t, err, ErrWriteStatement)

	out, err = query.Call(ctx, "SELECT COUNT(*) AS n FROM artists")
	require.NoError(t, err)
	assert.Equal(t, "n\n3", out, "rejected statement must not have run")

	_, err = query.Call(ctx, "SELECT nope FROM artists")
	assert.Error(t, err)
}

func TestQueryToolWritable(t *testing.T) {
	k, _ := newTestToolkit(t, WithReadOnly(false), WithMaxRows(1))
	query := k.ToolMap()[QueryToolName]
	ctx := context.Background()

	_, err := query.Call(ctx, "DELETE FROM albums")
	require.NoError(t, err)

	out, err := query.Call(ctx, "SELECT name FROM artists ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, "name\nAC/DC\n(1 of 3 rows)", out)
}
