// Package server provides application lifecycle management: ordered
// startup, reverse-order shutdown, and signal handling.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service represents a long-running component that can be started and stopped.
type Service interface {
	// Start begins the service. It should block until the service is stopped
	// or an error occurs.
	Start() error
	// Stop gracefully stops the service.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle runs the rooms service's components: the intent listener and
// the database watchdog start in registration order and stop in reverse,
// so the listener is gone before its backing pool.
type Lifecycle struct {
	logger  *zap.Logger
	mu      sync.Mutex
	members []member
}

type member struct {
	name string
	svc  Service
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service for lifecycle management.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.members = append(l.members, member{name: name, svc: svc})
}

// Run starts all services and blocks until a termination signal arrives
// (SIGINT or SIGTERM), a service fails, or the context is cancelled.
// Services then stop in reverse order.
//
// Postcondition: All services are stopped when this method returns; if a
// service failed, its error is returned.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(l.members))
	for _, m := range l.members {
		go l.launch(m, errCh, cancel)
	}

	l.logger.Info("all services started",
		zap.Int("count", len(l.members)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case runErr = <-errCh:
		l.logger.Error("service error, shutting down",
			zap.Error(runErr),
		)
	case <-ctx.Done():
		// A failing service cancels the context after reporting its
		// error; prefer that error over a bare cancellation.
		select {
		case runErr = <-errCh:
			l.logger.Error("service error, shutting down",
				zap.Error(runErr),
			)
		default:
			l.logger.Info("context cancelled, shutting down")
		}
	}

	l.shutdown()

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}

// launch runs one service to completion. A failure cancels the run
// context so the remaining services shut down.
func (l *Lifecycle) launch(m member, errCh chan<- error, cancel context.CancelFunc) {
	l.logger.Info("starting service",
		zap.String("service", m.name),
	)
	start := time.Now()
	if err := m.svc.Start(); err != nil {
		l.logger.Error("service failed",
			zap.String("service", m.name),
			zap.Error(err),
			zap.Duration("uptime", time.Since(start)),
		)
		errCh <- fmt.Errorf("service %s: %w", m.name, err)
		cancel()
	}
}

func (l *Lifecycle) shutdown() {
	shutdownStart := time.Now()
	for i := len(l.members) - 1; i >= 0; i-- {
		m := l.members[i]
		svcStart := time.Now()
		l.logger.Info("stopping service",
			zap.String("service", m.name),
		)
		m.svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", m.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
