package registry

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/northfleet/assetsync/pkg/errors"
)

// Policy bounds the retry behavior for a single request.
type Policy struct {
	// MaxRetries is how many times a transient failure is retried before the
	// request is declared exhausted.
	MaxRetries int

	// InitialDelay is the first backoff delay for server errors.
	InitialDelay time.Duration

	// MaxDelay caps every backoff delay, including server-provided
	// Retry-After hints.
	MaxDelay time.Duration
}

// DefaultPolicy mirrors the registry's documented limits: up to 5 retries,
// starting at 1s and never sleeping longer than 32s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     32 * time.Second,
	}
}

// retryState tracks the backoff progress of one in-flight request. It is
// owned by that request and discarded when the request completes.
type retryState struct {
	policy  Policy
	attempt int
	delay   time.Duration
}

func newRetryState(policy Policy) *retryState {
	return &retryState{policy: policy, delay: policy.InitialDelay}
}

// exhausted reports whether the retry budget has run out.
func (s *retryState) exhausted() bool {
	return s.attempt >= s.policy.MaxRetries
}

// next returns the delay to sleep before the next attempt and advances the
// state. A non-negative retryAfter (the server's Retry-After hint) overrides
// the exponential schedule; either way the delay is capped at MaxDelay.
func (s *retryState) next(retryAfter time.Duration) time.Duration {
	var d time.Duration
	if retryAfter >= 0 {
		d = retryAfter
	} else {
		d = s.delay
		s.delay *= 2
	}
	if d > s.policy.MaxDelay {
		d = s.policy.MaxDelay
	}
	s.attempt++
	return d + jitter(d)
}

// jitter returns a uniform random duration in [0, 10% of d] to avoid
// thundering-herd retries.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Float64() * 0.1 * float64(d))
}

// retryAfterHint parses the Retry-After header in seconds. Returns -1 when
// absent or unparseable.
func retryAfterHint(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return -1
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return -1
	}
	return time.Duration(secs) * time.Second
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.WrapResource("wait", "backoff", "", ctx.Err())
	case <-timer.C:
		return nil
	}
}
