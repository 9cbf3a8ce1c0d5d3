// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

/*
Package main is the entry point for the Syncroom server.

Syncroom relays real-time collaboration traffic between browser clients that
share a session: code edits, a per-session file table, cursor and selection
presence, chat, and a shared whiteboard. State lives in memory for the life of
the process.

# Application Architecture

	RootSupervisor ("syncroom")
	├── RelaySupervisor ("relay-layer")
	│   ├── WebSocket Hub (connection gateway, event dispatch)
	│   └── Session Janitor (idle session eviction)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (/ws, health, rooms, metrics)

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog via internal/logging
 3. Session Directory with the seed file policy
 4. WebSocket hub and the relay router, linked with Hub.SetHandler
 5. Chi router and http.Server
 6. Supervisor tree; SIGINT/SIGTERM cancel it

# Configuration

Common environment variables:

	PORT                 listen port (default 3000)
	LOG_LEVEL            trace, debug, info, warn, error
	LOG_FORMAT           json or console
	CORS_ORIGINS         comma separated; "*" accepts every origin
	SESSION_IDLE_TTL     idle session eviction (default 30m, 0 disables)
	PROTECT_SEED_FILE    refuse deleting the seed file (default true)
	WHITEBOARD_HISTORY   replay strokes to late joiners (default true)
	INBOUND_RATE         per-connection events/second (default 0, off)

# Example Usage

	PORT=3000 LOG_FORMAT=console ./syncroom

*/
package main
