package openai

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/callbacks"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

type options struct {
	apiKey           string
	baseURL          string
	organization     string
	modelName        string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
	temperature      *float64
}

// Option is a function type that can be used to modify the client options.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(o *options) {
		o.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL of an OpenAI compatible API, e.g. "http://localhost:11434/v1".
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithOrganization sets the OpenAI organization.
func WithOrganization(org string) Option {
	return func(o *options) {
		o.organization = org
	}
}

// WithModel sets the default model name.
func WithModel(model string) Option {
	return func(o *options) {
		o.modelName = model
	}
}

// WithTemperature sets the sampling temperature of every request, including
// 0. A non-zero llms.WithTemperature call option takes precedence.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = &t
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithCallback sets the callback handler.
func WithCallback(callbacksHandler callbacks.Handler) Option {
	return func(o *options) {
		o.callbacksHandler = callbacksHandler
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
