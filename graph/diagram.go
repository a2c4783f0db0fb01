package graph

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pilgrim-ai/pilgrim/log"
)

// DefaultMermaidRendererURL is the public Mermaid rendering service.
const DefaultMermaidRendererURL = "https://mermaid.ink"

// ErrRendererStatus is returned when the renderer answers with a non-2xx status.
var ErrRendererStatus = errors.New("mermaid renderer returned an error status")

// MermaidRenderer turns Mermaid source into a PNG image using a
// mermaid.ink compatible HTTP service.
type MermaidRenderer struct {
	// BaseURL of the service; DefaultMermaidRendererURL when empty.
	BaseURL string

	// Client performs the requests; a client with a 10s timeout when nil.
	Client *http.Client

	// MaxAttempts bounds the number of requests (default 5).
	MaxAttempts int

	// Delay is the fixed wait between attempts (default 2s).
	Delay time.Duration

	// Logger receives retry progress and the textual fallback.
	Logger log.Logger
}

// Diagram is the result of DrawMermaidPNG.
type Diagram struct {
	// PNG holds the rendered image; nil when rendering gave up.
	PNG []byte

	// Mermaid is the diagram source.
	Mermaid string

	Outcome  RetryOutcome
	Attempts int
	Err      error
}

// DrawMermaidPNG renders the graph as a PNG. Transient failures (network
// errors and 5xx answers) are retried with a fixed delay; when every attempt
// fails the Mermaid text is logged as a fallback and a Diagram without PNG
// is returned. It never returns an error.
func DrawMermaidPNG(ctx context.Context, cg *CompiledGraph, r *MermaidRenderer) Diagram {
	if r == nil {
		r = &MermaidRenderer{}
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := r.Delay
	if delay == 0 {
		delay = 2 * time.Second
	}

	source := NewExporter(cg).DrawMermaid()

	res := Retry(ctx, RetryPolicy[[]byte]{
		MaxAttempts: attempts,
		Delay:       delay,
		Retryable:   isTransientRenderError,
		OnRetry: func(attempt int, err error) {
			logger.Warn("attempt %d/%d to render diagram failed: %v; retrying in %v", attempt, attempts, err, delay)
		},
		Fallback: func(_ context.Context, lastErr error) ([]byte, error) {
			logger.Warn("all diagram render attempts failed: %v", lastErr)
			logger.Info("mermaid diagram:\n%s", source)
			return nil, nil
		},
	}, func(ctx context.Context) ([]byte, error) {
		return r.Render(ctx, source)
	})

	return Diagram{
		PNG:      res.Value,
		Mermaid:  source,
		Outcome:  res.Outcome,
		Attempts: res.Attempts,
		Err:      res.Err,
	}
}

// Render requests a PNG for the given Mermaid source.
func (r *MermaidRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	base := r.BaseURL
	if base == "" {
		base = DefaultMermaidRendererURL
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	encoded := base64.URLEncoding.EncodeToString([]byte(source))
	url := strings.TrimRight(base, "/") + "/img/" + encoded + "?type=png"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RenderStatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	return body, nil
}

// RenderStatusError carries the HTTP status of a failed render.
type RenderStatusError struct {
	StatusCode int
}

func (e *RenderStatusError) Error() string {
	return fmt.Sprintf("%v: %d", ErrRendererStatus, e.StatusCode)
}

func (e *RenderStatusError) Unwrap() error {
	return ErrRendererStatus
}

func isTransientRenderError(err error) bool {
	var statusErr *RenderStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded)
}
