// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package supervisor runs the long-lived services (HTTP server,
// session store GC) under Suture supervision so a crashing service is
// restarted with backoff instead of taking the process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/kinograph/kinograph/internal/logging"
)

// Tree wraps the root supervisor.
type Tree struct {
	root *suture.Supervisor
}

// New builds the root supervisor with suture's stock failure window
// (5 failures decaying over 30s, 15s backoff) and routes supervision
// events into the zerolog pipeline via the slog bridge.
func New() *Tree {
	logger := slog.New(logging.NewSlogHandler())
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	root := suture.New("kinograph", suture.Spec{
		EventHook:        hook,
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
	return &Tree{root: root}
}

// Add registers a service with the root supervisor.
func (t *Tree) Add(svc suture.Service) suture.ServiceToken {
	return t.root.Add(svc)
}

// ServeBackground starts the tree and returns the channel carrying
// its terminal error once ctx is cancelled.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}
