// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/syncroom/internal/config"
	"github.com/syncroom/syncroom/internal/logging"
	"github.com/syncroom/syncroom/internal/session"
	ws "github.com/syncroom/syncroom/internal/websocket"
)

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade (this file)
//   - handlers_helpers.go: shared helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_rooms.go: read-only session inspection
type Handler struct {
	config    *config.Config
	directory *session.Directory
	wsHub     *ws.Hub
	upgrader  *websocket.Upgrader
	startTime time.Time
	ready     atomic.Bool
}

// NewHandler creates a new API handler. The handler reports not ready until
// SetReady(true) is called.
func NewHandler(cfg *config.Config, dir *session.Directory, hub *ws.Hub) *Handler {
	h := &Handler{
		config:    cfg,
		directory: dir,
		wsHub:     hub,
		startTime: time.Now(),
	}
	h.upgrader = ws.NewUpgrader(h.checkWebSocketOrigin)
	return h
}

// SetReady flips the readiness probe.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// checkWebSocketOrigin validates WebSocket connection origins.
// A wildcard CORS list accepts every origin, including none; otherwise the
// Origin header must be present and listed.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	if h.config == nil || h.config.AllowsAllOrigins() {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Ctx(r.Context()).Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == origin {
			return true
		}
	}

	logging.Ctx(r.Context()).Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the request and hands the connection to the gateway.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Ctx(r.Context()).Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	ws.ServeWS(h.wsHub, h.upgrader, w, r)
}
