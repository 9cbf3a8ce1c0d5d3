// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// stubServer blocks in ListenAndServe until Shutdown is called.
type stubServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newStubServer() *stubServer {
	return &stubServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (s *stubServer) ListenAndServe() error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	close(s.stop)
	return s.shutdownErr
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newStubServer(), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if svc := NewHTTPServerService(newStubServer(), 3*time.Second); svc.shutdownTimeout != 3*time.Second {
		t.Errorf("explicit timeout overwritten: %v", svc.shutdownTimeout)
	}
	if got := NewHTTPServerService(newStubServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	tests := []struct {
		name        string
		listenErr   error
		shutdownErr error
		cancel      bool
		want        error
	}{
		{"graceful shutdown", nil, nil, true, context.Canceled},
		{"listen failure", errors.New("bind: address already in use"), nil, false, nil},
		{"shutdown failure", nil, errors.New("shutdown timeout"), true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStubServer()
			server.listenErr = tt.listenErr
			server.shutdownErr = tt.shutdownErr
			svc := NewHTTPServerService(server, time.Second)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			<-server.started
			if tt.cancel {
				cancel()
			}

			var err error
			select {
			case err = <-errCh:
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}

			switch {
			case tt.want != nil && !errors.Is(err, tt.want):
				t.Errorf("Serve() = %v, want %v", err, tt.want)
			case tt.listenErr != nil && !errors.Is(err, tt.listenErr):
				t.Errorf("Serve() = %v, want wrapped %v", err, tt.listenErr)
			case tt.shutdownErr != nil && !errors.Is(err, tt.shutdownErr):
				t.Errorf("Serve() = %v, want wrapped %v", err, tt.shutdownErr)
			}
		})
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	server := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://" + addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	server := newStubServer()
	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-server.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}

	cancel()
	<-errCh
	if server.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdowns.Load())
	}
}
