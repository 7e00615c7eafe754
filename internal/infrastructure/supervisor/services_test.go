package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoller struct {
	startErr error
	stopped  bool
}

func (p *fakePoller) Start(ctx context.Context) error {
	if p.startErr != nil {
		return p.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *fakePoller) Stop(_ context.Context) error {
	p.stopped = true
	return nil
}

func TestPollerService_StopsOnCancel(t *testing.T) {
	poller := &fakePoller{}
	svc := NewPollerService("bot", poller, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.True(t, poller.stopped)
}

func TestPollerService_PropagatesStartError(t *testing.T) {
	boom := errors.New("token rejected")
	svc := NewPollerService("bot", &fakePoller{startErr: boom}, time.Second)

	err := svc.Serve(context.Background())

	assert.ErrorIs(t, err, boom)
}

type fakeRunner struct {
	startErr error
	stopped  chan struct{}
}

func (r *fakeRunner) Start(_ context.Context) error { return r.startErr }

func (r *fakeRunner) Stop() error {
	close(r.stopped)
	return nil
}

func TestRunnerService_StopsOnCancel(t *testing.T) {
	runner := &fakeRunner{stopped: make(chan struct{})}
	svc := NewRunnerService("scheduler", runner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	select {
	case <-runner.stopped:
	default:
		t.Fatal("runner was not stopped")
	}
}

func TestRunnerService_PropagatesStartError(t *testing.T) {
	boom := errors.New("already running")
	svc := NewRunnerService("scheduler", &fakeRunner{startErr: boom})

	err := svc.Serve(context.Background())

	assert.ErrorIs(t, err, boom)
}

type fakeListener struct {
	errCh    chan error
	shutdown bool
}

func (l *fakeListener) StartAsync() <-chan error { return l.errCh }

func (l *fakeListener) Shutdown(_ context.Context) error {
	l.shutdown = true
	return nil
}

func TestListenerService_ShutsDownOnCancel(t *testing.T) {
	listener := &fakeListener{errCh: make(chan error)}
	svc := NewListenerService("ops-http", listener, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.True(t, listener.shutdown)
}

func TestListenerService_PropagatesServeError(t *testing.T) {
	listener := &fakeListener{errCh: make(chan error, 1)}
	boom := errors.New("listen tcp: address in use")
	listener.errCh <- boom
	close(listener.errCh)

	svc := NewListenerService("ops-http", listener, time.Second)

	err := svc.Serve(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestTree_ServesAndStops(t *testing.T) {
	tree := NewTree("tracker", nil, DefaultTreeConfig())

	runner := &fakeRunner{stopped: make(chan struct{})}
	tree.AddBackgroundService(NewRunnerService("scheduler", runner))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	// Give the tree a moment to start children.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
}
