// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health probes.
type HealthStatus struct {
	Status      string  `json:"status"`
	Uptime      float64 `json:"uptime_seconds"`
	Connections int     `json:"connections"`
	Sessions    int     `json:"sessions"`
}

func (h *Handler) health(status string) HealthStatus {
	hs := HealthStatus{
		Status: status,
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		hs.Connections = h.wsHub.GetClientCount()
	}
	if h.directory != nil {
		hs.Sessions = h.directory.Len()
	}
	return hs
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of readiness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.health("alive"))
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 503 until the hub is running and after shutdown begins.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready.Load() || h.wsHub == nil {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"service not ready", h.health("not_ready"))
		return
	}
	rw.Success(h.health("ready"))
}
