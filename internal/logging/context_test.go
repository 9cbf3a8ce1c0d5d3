// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("expected 8 character correlation ID, got %q", id)
	}
	if id == GenerateCorrelationID() {
		t.Error("expected distinct correlation IDs")
	}
}

func TestContextIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" || ConnIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = ContextWithCorrelationID(ctx, "corr0001")
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithConnID(ctx, "conn-1")

	if got := CorrelationIDFromContext(ctx); got != "corr0001" {
		t.Errorf("correlation ID = %q, want corr0001", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("request ID = %q, want req-1", got)
	}
	if got := ConnIDFromContext(ctx); got != "conn-1" {
		t.Errorf("conn ID = %q, want conn-1", got)
	}
}

func TestCtx_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-42")
	ctx = ContextWithConnID(ctx, "conn-7")

	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"conn_id":"conn-7"`, `"message":"hello"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := WithComponent("websocket-hub")
	logger.Info().Msg("started")

	if !strings.Contains(buf.String(), `"component":"websocket-hub"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
