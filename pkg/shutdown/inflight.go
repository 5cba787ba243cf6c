package shutdown

import (
	"context"
	"sync"

	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// InFlightTracker counts running work so shutdown can wait for it and refuse
// new work once draining has started.
type InFlightTracker struct {
	name     string
	logger   ports.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
	draining bool
}

// NewInFlightTracker creates a named tracker
func NewInFlightTracker(name string, logger ports.Logger) *InFlightTracker {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &InFlightTracker{name: name, logger: logger}
}

// Add registers one unit of work. It returns false once draining started.
func (t *InFlightTracker) Add() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.draining {
		return false
	}
	t.wg.Add(1)
	return true
}

// Done marks one unit of work finished
func (t *InFlightTracker) Done() {
	t.wg.Done()
}

// IsDraining reports whether Shutdown has been called
func (t *InFlightTracker) IsDraining() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.draining
}

// Shutdown stops accepting work and waits for running work or ctx expiry
func (t *InFlightTracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.draining = true
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("in-flight work drained", ports.String("tracker", t.name))
		return nil
	case <-ctx.Done():
		t.logger.Warn("shutdown deadline reached with work still running",
			ports.String("tracker", t.name))
		return ctx.Err()
	}
}
