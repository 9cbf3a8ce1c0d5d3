// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

/*
Package services provides suture.Service wrappers for Syncroom components.

Each wrapper implements:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer so suture can name it in log events.

# Available Services

WebSocket Hub (WebSocketHubService):
  - Runs websocket.Hub.RunWithContext, the single relay worker
  - Flips the readiness probe while the loop is running

Session Janitor (JanitorService):
  - Calls session.Directory.EvictIdle every interval
  - Idles without sweeping when the TTL is zero

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe to Serve

The wrappers depend on small interfaces (ContextHub, SessionEvicter,
HTTPServer) rather than concrete types so they can be tested with stubs.
*/
package services
