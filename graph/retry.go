package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryOutcome is the terminal state of a Retry call.
type RetryOutcome int

const (
	// RetrySucceeded means one of the attempts returned without error.
	RetrySucceeded RetryOutcome = iota
	// RetryFellBack means every attempt failed and the fallback produced the value.
	RetryFellBack
	// RetryGaveUp means every attempt failed and there was no usable fallback.
	RetryGaveUp
)

func (o RetryOutcome) String() string {
	switch o {
	case RetrySucceeded:
		return "succeeded"
	case RetryFellBack:
		return "fell back"
	case RetryGaveUp:
		return "gave up"
	default:
		return fmt.Sprintf("RetryOutcome(%d)", int(o))
	}
}

// RetryPolicy configures Retry: a bounded number of attempts separated by a
// fixed delay, followed by an optional fallback.
type RetryPolicy[T any] struct {
	// MaxAttempts counts the initial attempt. Values below 1 mean 1.
	MaxAttempts int

	// Delay is waited between attempts.
	Delay time.Duration

	// Retryable decides whether an error is worth another attempt. Nil retries every error.
	Retryable func(error) bool

	// OnRetry is called before waiting for the next attempt.
	OnRetry func(attempt int, err error)

	// Fallback produces a value once the attempts are exhausted.
	Fallback func(ctx context.Context, lastErr error) (T, error)
}

// RetryResult is the value and outcome of a Retry call.
type RetryResult[T any] struct {
	Value    T
	Outcome  RetryOutcome
	Attempts int
	// Err is the last attempt error for RetryFellBack and RetryGaveUp.
	Err error
}

// Retry calls fn until it succeeds, the attempts are exhausted, the error is
// not retryable or ctx is done. Retry itself never fails: giving up is an
// outcome, and the caller decides whether it is an error.
func Retry[T any](ctx context.Context, policy RetryPolicy[T], fn func(ctx context.Context) (T, error)) RetryResult[T] {
	attempts := max(policy.MaxAttempts, 1)

	var lastErr error
	n := 0
	for n < attempts {
		n++
		v, err := fn(ctx)
		if err == nil {
			return RetryResult[T]{Value: v, Outcome: RetrySucceeded, Attempts: n}
		}
		lastErr = err

		if n == attempts || (policy.Retryable != nil && !policy.Retryable(err)) {
			break
		}
		if policy.OnRetry != nil {
			policy.OnRetry(n, err)
		}
		if !sleep(ctx, policy.Delay) {
			lastErr = errors.Join(lastErr, ctx.Err())
			break
		}
	}

	res := RetryResult[T]{Outcome: RetryGaveUp, Attempts: n, Err: lastErr}
	if policy.Fallback == nil {
		return res
	}
	v, err := policy.Fallback(ctx, lastErr)
	if err != nil {
		res.Err = errors.Join(lastErr, fmt.Errorf("fallback: %w", err))
		return res
	}
	res.Value = v
	res.Outcome = RetryFellBack
	return res
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// RetryConfig configures WithNodeRetry.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// WithNodeRetry wraps a node so that its own failures are retried. The
// engine never retries; this is opt-in per node.
func WithNodeRetry(fn NodeFunc, cfg RetryConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		res := Retry(ctx, RetryPolicy[State]{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.Delay,
			Retryable:   cfg.Retryable,
		}, func(ctx context.Context) (State, error) {
			return fn(ctx, state)
		})
		if res.Outcome != RetrySucceeded {
			return nil, fmt.Errorf("gave up after %d attempts: %w", res.Attempts, res.Err)
		}
		return res.Value, nil
	}
}

// WithNodeTimeout wraps a node with a deadline. The node receives a context
// that is cancelled after d; if it does not return in time the wrapper
// returns an error and the node's eventual result is discarded.
func WithNodeTimeout(fn NodeFunc, d time.Duration) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			value State
			err   error
		}
		resultChan := make(chan result, 1)

		go func() {
			value, err := fn(timeoutCtx, state)
			resultChan <- result{value: value, err: err}
		}()

		select {
		case res := <-resultChan:
			return res.value, res.err
		case <-timeoutCtx.Done():
			return nil, fmt.Errorf("node timed out after %v: %w", d, timeoutCtx.Err())
		}
	}
}
