// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

/*
Package websocket is Syncroom's Connection Gateway and Group Broadcaster.

It uses gorilla/websocket with a hub-and-spoke architecture:

	            ┌─────────────────────────────┐
	            │            Hub              │
	 inbound ──►│  clients   groups (session) │──► Handler (relay.Router)
	            └──────┬──────────┬───────────┘
	                   │          │
	              ┌────┴───┐  ┌───┴────┐
	              │ Client │  │ Client │  ...
	              └────────┘  └────────┘

Each client has two goroutines:
  - readPump: reads frames, decodes them with the protocol package, applies
    the per-connection rate limit and queues the result for the hub
  - writePump: writes queued frames and keepalive pings

The hub goroutine (RunWithContext) is the single logical worker. It registers
and unregisters clients and hands each inbound event to the Handler, which runs
to completion before the next event is taken. A closing read pump queues its
disconnect behind its own frames, so a client's last events are dispatched
before Handler.Disconnect runs for it. The Handler reaches connections
through the Broadcaster methods (Send, JoinGroup, LeaveGroup, Emit, EmitExcept),
which operate on the hub's registry directly.

Slow consumers:

Frames are queued without blocking. When a client's send buffer is full the
client is removed from the registry and every group, its send channel is
closed (the write pump then closes the connection), and Handler.Disconnect runs
after the current event completes. Per-connection memory is therefore bounded
by the send buffer.

Usage:

	hub := websocket.NewHub(websocket.Config{SendBuffer: 256})
	router := relay.NewRouter(directory, hub, relay.Options{})
	hub.SetHandler(router)
	go hub.RunWithContext(ctx)

	upgrader := websocket.NewUpgrader(nil)
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, upgrader, w, r)
	})
*/
package websocket
