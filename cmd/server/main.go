// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/syncroom/syncroom/internal/api"
	"github.com/syncroom/syncroom/internal/config"
	"github.com/syncroom/syncroom/internal/logging"
	"github.com/syncroom/syncroom/internal/relay"
	"github.com/syncroom/syncroom/internal/session"
	"github.com/syncroom/syncroom/internal/supervisor"
	"github.com/syncroom/syncroom/internal/supervisor/services"
	ws "github.com/syncroom/syncroom/internal/websocket"
)

// application holds the wired components.
type application struct {
	tree      *supervisor.SupervisorTree
	server    *http.Server
	directory *session.Directory
	hub       *ws.Hub
	handler   *api.Handler
}

// newApplication wires every component and registers the supervised services.
// Nothing runs until the tree is served.
func newApplication(cfg *config.Config) (*application, error) {
	directory := session.NewDirectory(session.Policy{
		Seed: session.File{
			Name:     cfg.Relay.SeedFileName,
			Language: cfg.Relay.SeedLanguage,
			Content:  cfg.Relay.SeedContent,
		},
		ProtectSeed: cfg.Relay.ProtectSeedFile,
		MaxStrokes:  cfg.Relay.WhiteboardMaxStrokes,
	})

	hub := ws.NewHub(ws.Config{
		SendBuffer:     cfg.Relay.SendBuffer,
		MaxMessageSize: cfg.Relay.MaxMessageSize,
		InboundRate:    cfg.Relay.InboundRate,
		InboundBurst:   cfg.Relay.InboundBurst,
	})
	router := relay.NewRouter(directory, hub, relay.Options{
		WhiteboardHistory: cfg.Relay.WhiteboardHistory,
		NotifyRejections:  cfg.Relay.NotifyRejections,
	})
	hub.SetHandler(router)

	handler := api.NewHandler(cfg, directory, hub)
	httpRouter := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpRouter.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// Bridges zerolog to slog for sutureslog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}

	tree.AddRelayService(services.NewWebSocketHubService(hub, handler.SetReady))
	tree.AddRelayService(services.NewJanitorService(directory, cfg.Relay.SessionIdleTTL, cfg.Relay.EvictionInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	return &application{
		tree:      tree,
		server:    server,
		directory: directory,
		hub:       hub,
		handler:   handler,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("seed_file", cfg.Relay.SeedFileName).
		Bool("protect_seed_file", cfg.Relay.ProtectSeedFile).
		Bool("whiteboard_history", cfg.Relay.WhiteboardHistory).
		Dur("session_idle_ttl", cfg.Relay.SessionIdleTTL).
		Strs("cors_origins", cfg.Security.CORSOrigins).
		Msg("Starting Syncroom")

	app, err := newApplication(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := app.tree.ServeBackground(ctx)
	logging.Info().Str("addr", app.server.Addr).Msg("Supervisor tree started")

	// ServeBackground's channel yields once and closes when the tree stops.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := app.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().
		Int("sessions", app.directory.Len()).
		Msg("Syncroom stopped")
}
