package supervisor

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE ADAPTERS
// Wrappers turning the tracker's long-lived components into suture
// services. Each adapter owns the component's shutdown on context
// cancellation, so the tree can restart it cleanly.
// ══════════════════════════════════════════════════════════════════════════════

// Poller is a component with a blocking start and a graceful stop, such
// as the Telegram bot's long-polling loop.
type Poller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PollerService supervises a Poller.
type PollerService struct {
	name            string
	poller          Poller
	shutdownTimeout time.Duration
}

// NewPollerService wraps a Poller as a suture service.
func NewPollerService(name string, poller Poller, shutdownTimeout time.Duration) *PollerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &PollerService{
		name:            name,
		poller:          poller,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve implements suture.Service. Start blocks until the context is
// canceled or the poll loop fails; either way the component is stopped
// before returning so a restart begins from a clean state.
func (s *PollerService) Serve(ctx context.Context) error {
	err := s.poller.Start(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	_ = s.poller.Stop(stopCtx)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// String implements fmt.Stringer for suture's event log.
func (s *PollerService) String() string { return s.name }

// ─────────────────────────────────────────────────────────────────────────────
// Scheduler
// ─────────────────────────────────────────────────────────────────────────────

// Runner is a component with a non-blocking start, such as the job
// scheduler.
type Runner interface {
	Start(ctx context.Context) error
	Stop() error
}

// RunnerService supervises a Runner.
type RunnerService struct {
	name   string
	runner Runner
}

// NewRunnerService wraps a Runner as a suture service.
func NewRunnerService(name string, runner Runner) *RunnerService {
	return &RunnerService{name: name, runner: runner}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	if err := s.runner.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	_ = s.runner.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's event log.
func (s *RunnerService) String() string { return s.name }

// ─────────────────────────────────────────────────────────────────────────────
// HTTP server
// ─────────────────────────────────────────────────────────────────────────────

// Listener is a component serving connections in the background, such as
// the ops HTTP server.
type Listener interface {
	StartAsync() <-chan error
	Shutdown(ctx context.Context) error
}

// ListenerService supervises a Listener.
type ListenerService struct {
	name            string
	listener        Listener
	shutdownTimeout time.Duration
}

// NewListenerService wraps a Listener as a suture service.
func NewListenerService(name string, listener Listener, shutdownTimeout time.Duration) *ListenerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &ListenerService{
		name:            name,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve implements suture.Service.
func (s *ListenerService) Serve(ctx context.Context) error {
	errCh := s.listener.StartAsync()

	select {
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = s.listener.Shutdown(stopCtx)
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok || err == nil {
			// Clean stop without cancellation means something shut the
			// server down externally; let the supervisor restart it.
			return nil
		}
		return err
	}
}

// String implements fmt.Stringer for suture's event log.
func (s *ListenerService) String() string { return s.name }
