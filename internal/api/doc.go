// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

/*
Package api provides Syncroom's HTTP surface using the Chi router.

Routes:

	GET /ws                     WebSocket upgrade into the Connection Gateway
	GET /api/v1/health/live     liveness probe
	GET /api/v1/health/ready    readiness probe (503 until the hub runs)
	GET /api/v1/rooms           summary of every live session
	GET /api/v1/rooms/{id}      one session's file table and roster
	GET /metrics                Prometheus exposition

Middleware stack (global): request id with logging context, real IP, panic
recovery, CORS. The upgrade and inspection routes are rate limited per client
IP with go-chi/httprate and instrumented with Prometheus.

WebSocket origin policy: when the CORS list contains "*" every origin is
accepted, including requests without an Origin header; otherwise the Origin
header must be present and listed.

JSON responses share one envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 0}
	}

The inspection endpoints are read-only; session state changes only through
the websocket protocol.
*/
package api
