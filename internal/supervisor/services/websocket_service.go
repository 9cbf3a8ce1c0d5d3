// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package services

import (
	"context"
)

// ContextHub is satisfied by *websocket.Hub. Declaring it here keeps this
// package free of the websocket import.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService runs the Connection Gateway hub under supervision.
//
// The optional readiness callback is set true when the hub loop starts and
// false when it returns, so the readiness probe follows restarts.
//
// Example usage:
//
//	hub := websocket.NewHub(cfg)
//	svc := services.NewWebSocketHubService(hub, handler.SetReady)
//	tree.AddRelayService(svc)
type WebSocketHubService struct {
	hub   ContextHub
	ready func(bool)
	name  string
}

// NewWebSocketHubService creates a hub service. ready may be nil.
func NewWebSocketHubService(hub ContextHub, ready func(bool)) *WebSocketHubService {
	if ready == nil {
		ready = func(bool) {}
	}
	return &WebSocketHubService{
		hub:   hub,
		ready: ready,
		name:  "websocket-hub",
	}
}

// Serve implements suture.Service. It returns ctx.Err() on normal shutdown.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	w.ready(true)
	defer w.ready(false)
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (w *WebSocketHubService) String() string {
	return w.name
}
