package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutdown_duration_seconds",
		Help:    "Total time taken to shut down gracefully",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 30},
	})

	shutdownErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutdown_errors_total",
		Help: "Shutdown failures by component",
	}, []string{"component"})
)

// Func shuts down one component within the deadline carried by ctx
type Func func(context.Context) error

type component struct {
	name string
	fn   Func
}

// Manager shuts registered components down in reverse registration order,
// so servers stop before the stores they depend on.
type Manager struct {
	logger     ports.Logger
	timeout    time.Duration
	mu         sync.Mutex
	components []component
}

// NewManager creates a manager that gives the whole shutdown timeout to finish
func NewManager(logger ports.Logger, timeout time.Duration) *Manager {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Manager{logger: logger, timeout: timeout}
}

// Register adds a component
func (m *Manager) Register(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, fn: fn})
}

// RegisterCloser registers anything with Close()
func (m *Manager) RegisterCloser(name string, closer interface{ Close() }) {
	m.Register(name, func(context.Context) error {
		closer.Close()
		return nil
	})
}

// WaitForSignal blocks until SIGINT or SIGTERM and then shuts down
func (m *Manager) WaitForSignal() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	sig := <-quit
	m.logger.Info("received shutdown signal", ports.String("signal", sig.String()))
	return m.Shutdown(context.Background())
}

// Shutdown runs every component, last registered first. Failures are
// logged and joined; a failing component does not stop the rest.
func (m *Manager) Shutdown(parent context.Context) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, m.timeout)
	defer cancel()

	m.mu.Lock()
	components := make([]component, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.fn(ctx); err != nil {
			shutdownErrors.WithLabelValues(c.name).Inc()
			m.logger.Error("component shutdown failed",
				ports.String("component", c.name),
				ports.Err(err))
			errs = append(errs, err)
			continue
		}
		m.logger.Debug("component stopped", ports.String("component", c.name))
	}

	elapsed := time.Since(start)
	shutdownDuration.Observe(elapsed.Seconds())
	m.logger.Info("shutdown complete",
		ports.Int("components", len(components)),
		ports.Int("failures", len(errs)),
		ports.Duration("elapsed", elapsed))
	return errors.Join(errs...)
}
