package store

import (
	"context"
	"errors"
	"time"

	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/tmc/langchaingo/llms"
)

// ErrRunNotFound is returned by Load when no record has the given ID.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the final status of a run.
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// RunRecord is the persisted summary of one run.
type RunRecord struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	Steps      int       `json:"steps"`
	Messages   []Message `json:"messages"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Message is the storable form of an llms.MessageContent.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part types.
const (
	PartText       = "text"
	PartToolCall   = "tool_call"
	PartToolResult = "tool_result"
)

// Part is one content part of a Message.
type Part struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Arguments  string `json:"arguments,omitempty"`
}

// RunStore persists run records.
type RunStore interface {
	// Save stores the record, replacing any record with the same ID.
	Save(ctx context.Context, record *RunRecord) error

	// Load returns the record with the given ID or ErrRunNotFound.
	Load(ctx context.Context, id string) (*RunRecord, error)

	// List returns every record, most recently started first.
	List(ctx context.Context) ([]*RunRecord, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// NewRunRecord summarizes a finished run. The question is the first human
// message and the answer the text of the last AI message.
func NewRunRecord(id string, state graph.State, steps int, runErr error, startedAt, finishedAt time.Time) *RunRecord {
	msgs := state.Messages()
	r := &RunRecord{
		ID:         id,
		Status:     StatusSucceeded,
		Steps:      steps,
		Messages:   EncodeMessages(msgs),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if runErr != nil {
		r.Status = StatusFailed
		r.Error = runErr.Error()
	}

	for _, m := range msgs {
		if m.Role == llms.ChatMessageTypeHuman {
			r.Question = messageText(m)
			break
		}
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llms.ChatMessageTypeAI {
			if text := messageText(msgs[i]); text != "" {
				r.Answer = text
				break
			}
		}
	}
	return r
}

// State rebuilds the message state of the run.
func (r *RunRecord) State() graph.State {
	return graph.NewMessagesState(DecodeMessages(r.Messages)...)
}

// Duration is the wall time of the run.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func messageText(m llms.MessageContent) string {
	text := ""
	for _, p := range m.Parts {
		if t, ok := p.(llms.TextContent); ok {
			text += t.Text
		}
	}
	return text
}

// EncodeMessages converts messages to their storable form. Unsupported parts
// such as images are dropped.
func EncodeMessages(msgs []llms.MessageContent) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		sm := Message{Role: string(m.Role)}
		for _, part := range m.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				sm.Parts = append(sm.Parts, Part{Type: PartText, Text: p.Text})
			case llms.ToolCall:
				sp := Part{Type: PartToolCall, ToolCallID: p.ID}
				if p.FunctionCall != nil {
					sp.Name = p.FunctionCall.Name
					sp.Arguments = p.FunctionCall.Arguments
				}
				sm.Parts = append(sm.Parts, sp)
			case llms.ToolCallResponse:
				sm.Parts = append(sm.Parts, Part{Type: PartToolResult, ToolCallID: p.ToolCallID, Name: p.Name, Text: p.Content})
			}
		}
		out = append(out, sm)
	}
	return out
}

// DecodeMessages converts stored messages back to llms messages.
func DecodeMessages(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, sm := range msgs {
		m := llms.MessageContent{Role: llms.ChatMessageType(sm.Role)}
		for _, p := range sm.Parts {
			switch p.Type {
			case PartText:
				m.Parts = append(m.Parts, llms.TextPart(p.Text))
			case PartToolCall:
				m.Parts = append(m.Parts, llms.ToolCall{
					ID:           p.ToolCallID,
					Type:         "function",
					FunctionCall: &llms.FunctionCall{Name: p.Name, Arguments: p.Arguments},
				})
			case PartToolResult:
				m.Parts = append(m.Parts, llms.ToolCallResponse{ToolCallID: p.ToolCallID, Name: p.Name, Content: p.Text})
			}
		}
		out = append(out, m)
	}
	return out
}
