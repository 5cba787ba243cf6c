package resilience

import (
	"context"
	"time"
)

// TimeoutConfig is the timeout hierarchy for one validation request. Inner
// budgets stay below the handler budget so the handler can still answer.
//
//	HTTPHandler (10s)
//	  PayeeLookup (2s per attempt)
//	  ReportArchive (3s)
type TimeoutConfig struct {
	HTTPHandler   time.Duration
	PayeeLookup   time.Duration
	ReportArchive time.Duration
}

// DefaultTimeoutConfig returns production timeouts
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:   10 * time.Second,
		PayeeLookup:   2 * time.Second,
		ReportArchive: 3 * time.Second,
	}
}

// TestTimeoutConfig returns short timeouts for tests
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:   time.Second,
		PayeeLookup:   100 * time.Millisecond,
		ReportArchive: 100 * time.Millisecond,
	}
}

// HandlerContext bounds a whole request
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// PayeeLookupContext bounds a single directory lookup attempt
func (tc *TimeoutConfig) PayeeLookupContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.PayeeLookup)
}

// ArchiveContext bounds a report save. It detaches from the request's
// cancellation so a client hang-up does not lose the archive.
func (tc *TimeoutConfig) ArchiveContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), tc.ReportArchive)
}
