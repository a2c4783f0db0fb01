package graph_test

import (
	"context"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/tmc/langchaingo/llms"
)

func say(text string) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.State, error) {
		return graph.MessagesUpdate(llms.TextParts(llms.ChatMessageTypeAI, text)), nil
	}
}

func lastText(s graph.State) string {
	msg, ok := s.LastMessage()
	if !ok || len(msg.Parts) == 0 {
		return ""
	}
	text, _ := msg.Parts[0].(llms.TextContent)
	return text.Text
}

func seed(text string) graph.State {
	return graph.NewMessagesState(llms.TextParts(llms.ChatMessageTypeHuman, text))
}
