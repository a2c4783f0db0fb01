package graph

import (
	"maps"
	"slices"

	"github.com/tmc/langchaingo/llms"
)

// MessagesKey is the state key holding the ordered message log.
const MessagesKey = "messages"

// State is the value threaded through a graph run. The "messages" key holds
// a []llms.MessageContent that only ever grows; other keys are merged with
// the reducers declared on the graph.
type State map[string]any

// NewMessagesState creates a state seeded with the given messages.
func NewMessagesState(messages ...llms.MessageContent) State {
	return State{MessagesKey: slices.Clone(messages)}
}

// MessagesUpdate builds a partial update that appends messages to the log.
func MessagesUpdate(messages ...llms.MessageContent) State {
	return State{MessagesKey: messages}
}

// Messages returns the message log, or nil when the state has none.
func (s State) Messages() []llms.MessageContent {
	msgs, _ := s[MessagesKey].([]llms.MessageContent)
	return msgs
}

// LastMessage returns the most recent message.
func (s State) LastMessage() (llms.MessageContent, bool) {
	msgs := s.Messages()
	if len(msgs) == 0 {
		return llms.MessageContent{}, false
	}
	return msgs[len(msgs)-1], true
}

// Clone returns a copy of the state whose map and message slice can be
// modified without affecting s. Other values are shared.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	out := maps.Clone(s)
	if msgs, ok := s[MessagesKey].([]llms.MessageContent); ok {
		out[MessagesKey] = slices.Clone(msgs)
	}
	return out
}
