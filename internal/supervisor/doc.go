// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

/*
Package supervisor provides suture-based process supervision for Syncroom.

# Tree

	syncroom (root)
	├── relay-layer
	│   ├── websocket-hub     (websocket.Hub.RunWithContext)
	│   └── session-janitor   (session.Directory.EvictIdle on a ticker)
	└── api-layer
	    └── http-server       (*http.Server with graceful shutdown)

Supervisor events are logged through sutureslog into the zerolog-backed
slog.Logger from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddRelayService(services.NewWebSocketHubService(hub))
	tree.AddRelayService(services.NewJanitorService(directory, ttl, interval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

# Failure Handling

Each service failure increments a counter that decays over FailureDecay
seconds. Past FailureThreshold the supervisor waits FailureBackoff before the
next restart. Returning nil from Serve stops a service without restart;
returning an error restarts it.

A restarted hub keeps its registry: connections opened before the crash stay
registered and their sessions stay in the Directory.

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("service did not stop")
	}
*/
package supervisor
