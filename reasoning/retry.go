package reasoning

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
)

// RetryOptions configures the Retry wrapper.
type RetryOptions struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	Logger          logging.Logger
}

// Retry retries a provider with exponential backoff. Malformed thoughts and
// context cancellation are permanent and returned immediately.
type Retry struct {
	next core.ReasoningProvider
	opts RetryOptions
}

// NewRetry wraps next.
func NewRetry(next core.ReasoningProvider, optFns ...func(o *RetryOptions)) *Retry {
	opts := RetryOptions{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  time.Minute,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retry{next: next, opts: opts}
}

// Name reports the wrapped provider's name.
func (r *Retry) Name() string { return core.ProviderName(r.next) }

// Think implements core.ReasoningProvider.
func (r *Retry) Think(ctx context.Context, rc core.ReasoningContext) (core.Thought, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.InitialInterval
	b.MaxInterval = r.opts.MaxInterval
	b.MaxElapsedTime = r.opts.MaxElapsedTime

	var thought core.Thought
	operation := func() error {
		th, err := r.next.Think(ctx, rc)
		if err == nil {
			thought = th
			return nil
		}
		if errors.Is(err, ErrMalformedThought) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.opts.Logger.Warn("reasoning.retry", "provider", r.Name(), "step", rc.Step, "error", err.Error(), "wait", wait)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.opts.MaxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return core.Thought{}, err
	}
	return thought, nil
}
