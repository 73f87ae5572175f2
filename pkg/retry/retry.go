// Package retry provides the pluggable retry capability a caller may
// apply around guarded provider calls. The call guard itself never
// retries; handlers that want retry carry a Strategy and wrap their
// calls explicitly.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

// Strategy decides whether and how to re-run a failing operation.
type Strategy interface {
	// Do runs fn, re-invoking it per the strategy until it succeeds,
	// fails terminally, or the context ends.
	Do(ctx context.Context, fn func() error) error
}

// ThrottleCodes are the provider error codes treated as retryable by the
// default strategy.
var ThrottleCodes = []string{
	"Throttling",
	"ThrottlingException",
	"RequestLimitExceeded",
	"TooManyRequestsException",
	"SlowDown",
}

// Exponential retries throttled provider errors with exponential backoff
// and full jitter. Errors without a throttle code fail immediately.
type Exponential struct {
	// Attempts is the maximum number of invocations, including the first.
	Attempts int

	// Base is the backoff unit; the nth retry sleeps up to Base * 2^n.
	Base time.Duration

	// Codes overrides ThrottleCodes when non-nil.
	Codes []string

	// rand is swappable for tests.
	Rand *rand.Rand
}

// Default returns the backoff strategy used when none is injected.
func Default() *Exponential {
	return &Exponential{Attempts: 5, Base: 250 * time.Millisecond}
}

// Do implements Strategy.
func (e *Exponential) Do(ctx context.Context, fn func() error) error {
	attempts := e.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if werr := e.sleep(ctx, attempt); werr != nil {
				return werr
			}
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !e.retryable(err) {
			return err
		}
	}
	return err
}

func (e *Exponential) retryable(err error) bool {
	code, ok := engine.ErrorCode(err)
	if !ok {
		return false
	}
	codes := e.Codes
	if codes == nil {
		codes = ThrottleCodes
	}
	for _, c := range codes {
		if code == c {
			return true
		}
	}
	return false
}

func (e *Exponential) sleep(ctx context.Context, attempt int) error {
	base := e.Base
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	max := base << uint(attempt)

	var d time.Duration
	if e.Rand != nil {
		d = time.Duration(e.Rand.Int63n(int64(max)))
	} else {
		d = time.Duration(rand.Int63n(int64(max)))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
