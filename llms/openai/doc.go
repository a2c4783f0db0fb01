// Package openai adapts the sashabaranov/go-openai client to the langchaingo
// llms.Model interface. It works with any OpenAI compatible chat completions
// endpoint and supports tool calling and streaming.
//
//	llm, err := openai.New(
//		openai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//		openai.WithModel("gpt-4o-mini"),
//	)
package openai
