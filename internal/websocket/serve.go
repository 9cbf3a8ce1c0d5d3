// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/syncroom/internal/logging"
)

// NewUpgrader creates an upgrader with handshake timeout and origin check.
// A nil checkOrigin accepts every origin.
func NewUpgrader(checkOrigin func(r *http.Request) bool) *websocket.Upgrader {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &websocket.Upgrader{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		CheckOrigin:      checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// ServeWS upgrades the request and attaches the connection to hub.
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(r.Context(), hub, conn)
	if !hub.Attach(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	client.logger.Debug().
		Str("remote_addr", r.RemoteAddr).
		Msg("websocket connection accepted")
	client.Start()
}
