// Package supervisor assembles the process supervision tree.
// Both binaries run their long-lived parts (bot polling loop, job
// scheduler, ops HTTP server) under a suture tree so a crashed component
// restarts with backoff instead of taking the process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// ══════════════════════════════════════════════════════════════════════════════
// TREE CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64

	// FailureBackoff is the wait when the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds graceful shutdown of a single service.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SUPERVISOR TREE
// ══════════════════════════════════════════════════════════════════════════════

// Tree is the two-layer supervision tree of the tracker.
//
// The background layer holds the job scheduler and poll loops; the
// interface layer holds the Telegram bot and the ops HTTP server. A crash
// in one layer restarts only that layer's service, so a panicking job
// cannot take the bot offline.
type Tree struct {
	root       *suture.Supervisor
	background *suture.Supervisor
	iface      *suture.Supervisor
	logger     *slog.Logger
	config     TreeConfig
}

// NewTree creates a supervision tree with suture events logged through
// slog.
func NewTree(name string, logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	eventHook := (&sutureslog.Handler{Logger: logger}).MustHook()

	rootSpec := suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New(name, rootSpec)
	background := suture.New("background-layer", childSpec)
	iface := suture.New("interface-layer", childSpec)

	root.Add(background)
	root.Add(iface)

	return &Tree{
		root:       root,
		background: background,
		iface:      iface,
		logger:     logger,
		config:     config,
	}
}

// AddBackgroundService adds a service to the background layer. Use this
// for the scheduler and poll loops.
func (t *Tree) AddBackgroundService(svc suture.Service) suture.ServiceToken {
	return t.background.Add(svc)
}

// AddInterfaceService adds a service to the interface layer. Use this for
// the bot polling loop and the ops HTTP server.
func (t *Tree) AddInterfaceService(svc suture.Service) suture.ServiceToken {
	return t.iface.Add(svc)
}

// Serve starts the tree and blocks until the context is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree in a goroutine. The channel receives
// the terminal error when the tree stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that ignored the shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
