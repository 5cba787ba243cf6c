package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy yields the delay before retry attempt n (0-indexed)
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier per attempt, capped at
// MaxDelay, with ±Jitter spread.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64
}

// DirectoryBackoff suits payee directory lookups made inside a request:
// ~50ms, ~100ms, ~200ms, capped at 1s.
func DirectoryBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return eb.BaseDelay
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt))
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	jitter := (rand.Float64()*2 - 1) * delay * eb.Jitter
	final := time.Duration(delay + jitter)
	if final < 0 {
		return eb.BaseDelay
	}
	return final
}

// FixedBackoff waits the same delay before every attempt
type FixedBackoff struct {
	Delay time.Duration
}

func (fb *FixedBackoff) NextDelay(int) time.Duration {
	return fb.Delay
}

// Retry calls fn up to attempts times, sleeping per strategy between calls.
// It stops early when fn succeeds, when retryable reports false, or when ctx
// is done. The last error is returned.
func Retry(ctx context.Context, strategy BackoffStrategy, attempts int, retryable func(error) bool, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(strategy.NextDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
