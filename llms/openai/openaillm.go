package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrEmptyResponse = errors.New("no response")
	ErrMissingAPIKey = errors.New("missing the OpenAI API key")
)

// LLM is a langchaingo model backed by go-openai.
type LLM struct {
	client           *goopenai.Client
	model            string
	temperature      *float64
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a new client. The API key defaults to OPENAI_API_KEY and the
// base URL to OPENAI_BASE_URL when set.
func New(opts ...Option) (*LLM, error) {
	options := &options{
		apiKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		baseURL:   getEnvOrDefault("OPENAI_BASE_URL", ""),
		modelName: DefaultModel,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.apiKey == "" && options.baseURL == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using openai.New(openai.WithAPIKey("{API Key}"))
or
export OPENAI_API_KEY={API Key}`, ErrMissingAPIKey)
	}

	cfg := goopenai.DefaultConfig(options.apiKey)
	if options.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(options.baseURL, "/")
	}
	if options.organization != "" {
		cfg.OrgID = options.organization
	}
	if options.httpClient != nil {
		cfg.HTTPClient = options.httpClient
	}

	return &LLM{
		client:           goopenai.NewClientWithConfig(cfg),
		model:            options.modelName,
		CallbacksHandler: options.callbacksHandler,
		temperature:      options.temperature,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req, err := o.buildRequest(messages, *opts)
	if err != nil {
		return nil, err
	}

	var resp *llms.ContentResponse
	if opts.StreamingFunc != nil {
		resp, err = o.stream(ctx, req, opts.StreamingFunc)
	} else {
		resp, err = o.complete(ctx, req)
	}
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

// requestTemperature resolves the temperature to send. go-openai omits a zero
// temperature, so an explicit 0 is sent as the smallest float32 instead.
func (o *LLM) requestTemperature(callTemperature float64) float32 {
	if callTemperature != 0 || o.temperature == nil {
		return float32(callTemperature)
	}
	if *o.temperature == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(*o.temperature)
}

func (o *LLM) buildRequest(messages []llms.MessageContent, opts llms.CallOptions) (goopenai.ChatCompletionRequest, error) {
	model := opts.Model
	if model == "" {
		model = o.model
	}

	req := goopenai.ChatCompletionRequest{
		Model:       model,
		Temperature: o.requestTemperature(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopWords,
	}

	for _, msg := range messages {
		converted, err := convertMessage(msg)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, converted...)
	}

	for _, t := range opts.Tools {
		if t.Function == nil {
			continue
		}
		req.Tools = append(req.Tools, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return req, nil
}

// convertMessage maps one langchaingo message to OpenAI messages. Tool
// results become one "tool" message per response part.
func convertMessage(msg llms.MessageContent) ([]goopenai.ChatCompletionMessage, error) {
	var role string
	switch msg.Role {
	case llms.ChatMessageTypeSystem:
		role = goopenai.ChatMessageRoleSystem
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric, "":
		role = goopenai.ChatMessageRoleUser
	case llms.ChatMessageTypeAI:
		role = goopenai.ChatMessageRoleAssistant
	case llms.ChatMessageTypeTool:
		role = goopenai.ChatMessageRoleTool
	default:
		return nil, fmt.Errorf("unsupported message role %q", msg.Role)
	}

	out := goopenai.ChatCompletionMessage{Role: role}
	var texts []string
	var toolResults []goopenai.ChatCompletionMessage
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			texts = append(texts, p.Text)
		case llms.ToolCall:
			if p.FunctionCall == nil {
				continue
			}
			out.ToolCalls = append(out.ToolCalls, goopenai.ToolCall{
				ID:   p.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      p.FunctionCall.Name,
					Arguments: p.FunctionCall.Arguments,
				},
			})
		case llms.ToolCallResponse:
			toolResults = append(toolResults, goopenai.ChatCompletionMessage{
				Role:       goopenai.ChatMessageRoleTool,
				Content:    p.Content,
				Name:       p.Name,
				ToolCallID: p.ToolCallID,
			})
		default:
			return nil, fmt.Errorf("unsupported content part %T", part)
		}
	}

	if len(toolResults) > 0 {
		return toolResults, nil
	}
	out.Content = strings.Join(texts, "\n")
	return []goopenai.ChatCompletionMessage{out}, nil
}

func (o *LLM) complete(ctx context.Context, req goopenai.ChatCompletionRequest) (*llms.ContentResponse, error) {
	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	resp := &llms.ContentResponse{}
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		resp.Choices = append(resp.Choices, choice)
	}
	return resp, nil
}

// stream reads a streamed completion, forwarding text deltas to fn and
// assembling tool call deltas by index.
func (o *LLM) stream(ctx context.Context, req goopenai.ChatCompletionRequest, fn func(ctx context.Context, chunk []byte) error) (*llms.ContentResponse, error) {
	req.Stream = true
	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var (
		content  strings.Builder
		calls    []llms.ToolCall
		stop     string
		received bool
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		received = true
		c := chunk.Choices[0]
		if c.FinishReason != "" {
			stop = string(c.FinishReason)
		}
		if c.Delta.Content != "" {
			content.WriteString(c.Delta.Content)
			if err := fn(ctx, []byte(c.Delta.Content)); err != nil {
				return nil, err
			}
		}
		for _, tc := range c.Delta.ToolCalls {
			idx := len(calls) - 1
			if tc.Index != nil {
				idx = *tc.Index
			}
			idx = max(idx, 0)
			for idx >= len(calls) {
				calls = append(calls, llms.ToolCall{Type: string(goopenai.ToolTypeFunction), FunctionCall: &llms.FunctionCall{}})
			}
			if tc.ID != "" {
				calls[idx].ID = tc.ID
			}
			calls[idx].FunctionCall.Name += tc.Function.Name
			calls[idx].FunctionCall.Arguments += tc.Function.Arguments
		}
	}
	if !received {
		return nil, ErrEmptyResponse
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:    content.String(),
			StopReason: stop,
			ToolCalls:  calls,
		}},
	}, nil
}
