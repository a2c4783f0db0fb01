package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestMergeAppendsMessages(t *testing.T) {
	s := NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, "hi"))
	update := MessagesUpdate(
		llms.TextParts(llms.ChatMessageTypeAI, "hello"),
		llms.TextParts(llms.ChatMessageTypeAI, "hello"),
	)

	merged, err := s.Merge(update)
	require.NoError(t, err)

	assert.Len(t, merged.Messages(), len(s.Messages())+len(update.Messages()))
	// identical messages are kept as distinct records
	assert.Equal(t, merged.Messages()[1], merged.Messages()[2])
	// inputs are untouched
	assert.Len(t, s.Messages(), 1)
}

func TestMergeLengthLaw(t *testing.T) {
	s := NewMessagesState()
	for i := 0; i < 5; i++ {
		var add []llms.MessageContent
		for j := 0; j <= i; j++ {
			add = append(add, llms.TextParts(llms.ChatMessageTypeAI, "x"))
		}
		before := len(s.Messages())
		var err error
		s, err = s.Merge(MessagesUpdate(add...))
		require.NoError(t, err)
		assert.Equal(t, before+len(add), len(s.Messages()))
	}
}

func TestMergeDoesNotShareBackingArray(t *testing.T) {
	base := make([]llms.MessageContent, 1, 10)
	base[0] = llms.TextParts(llms.ChatMessageTypeHuman, "seed")
	s := State{MessagesKey: base}

	a, err := s.Merge(MessagesUpdate(llms.TextParts(llms.ChatMessageTypeAI, "a")))
	require.NoError(t, err)
	b, err := s.Merge(MessagesUpdate(llms.TextParts(llms.ChatMessageTypeAI, "b")))
	require.NoError(t, err)

	assert.Equal(t, "a", a.Messages()[1].Parts[0].(llms.TextContent).Text)
	assert.Equal(t, "b", b.Messages()[1].Parts[0].(llms.TextContent).Text)
}

func TestMergeOtherKeysReplaceByDefault(t *testing.T) {
	s := State{"count": 1, "keep": "yes"}
	merged, err := s.Merge(State{"count": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, merged["count"])
	assert.Equal(t, "yes", merged["keep"])
	assert.Equal(t, 1, s["count"])
}

func TestSchemaRegisteredReducer(t *testing.T) {
	schema := NewSchema()
	require.NoError(t, schema.RegisterReducer("tables", AppendReducer))
	assert.Error(t, schema.RegisterReducer(MessagesKey, OverwriteReducer))

	s, err := schema.Update(State{}, State{"tables": []string{"users"}})
	require.NoError(t, err)
	s, err = schema.Update(s, State{"tables": "orders"})
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, s["tables"])
}

func TestAddMessagesRejectsWrongTypes(t *testing.T) {
	_, err := AddMessages("oops", []llms.MessageContent{})
	assert.Error(t, err)

	_, err = AddMessages(nil, 42)
	assert.Error(t, err)

	out, err := AddMessages(nil, llms.TextParts(llms.ChatMessageTypeAI, "single"))
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestAppendReducer(t *testing.T) {
	out, err := AppendReducer(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out)

	out, err = AppendReducer([]int{1}, []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	out, err = AppendReducer([]int{1}, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a"}, out)

	_, err = AppendReducer("not a slice", 1)
	assert.Error(t, err)

	_, err = AppendReducer([]int{1}, "a")
	assert.Error(t, err)
}

func TestStateHelpers(t *testing.T) {
	var empty State
	_, ok := empty.LastMessage()
	assert.False(t, ok)
	assert.NotNil(t, empty.Clone())

	s := NewMessagesState(
		llms.TextParts(llms.ChatMessageTypeHuman, "q"),
		llms.TextParts(llms.ChatMessageTypeAI, "a"),
	)
	last, ok := s.LastMessage()
	require.True(t, ok)
	assert.Equal(t, llms.ChatMessageTypeAI, last.Role)

	c := s.Clone()
	c.Messages()[0] = llms.TextParts(llms.ChatMessageTypeHuman, "changed")
	assert.Equal(t, "q", s.Messages()[0].Parts[0].(llms.TextContent).Text)
}
