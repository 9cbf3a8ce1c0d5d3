// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/syncroom/syncroom/internal/config"
	"github.com/syncroom/syncroom/internal/logging"
	"github.com/syncroom/syncroom/internal/protocol"
	"github.com/syncroom/syncroom/internal/relay"
	"github.com/syncroom/syncroom/internal/session"
	ws "github.com/syncroom/syncroom/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type testStack struct {
	cfg     *config.Config
	dir     *session.Directory
	hub     *ws.Hub
	handler *Handler
	server  *httptest.Server
}

// newTestStack wires directory, hub, relay and router the way the server does.
func newTestStack(t *testing.T, mutate func(*config.Config)) *testStack {
	t.Helper()

	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}

	dir := session.NewDirectory(session.DefaultPolicy())
	hub := ws.NewHub(ws.Config{})
	hub.SetHandler(relay.NewRouter(dir, hub, relay.Options{WhiteboardHistory: true}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = hub.RunWithContext(ctx)
	}()

	handler := NewHandler(cfg, dir, hub)
	handler.SetReady(true)
	server := httptest.NewServer(NewRouter(handler, NewChiMiddlewareFromConfig(cfg.Security)).SetupChi())

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-stopped
	})
	return &testStack{cfg: cfg, dir: dir, hub: hub, handler: handler, server: server}
}

func (s *testStack) get(t *testing.T, path string) (*http.Response, APIResponse) {
	t.Helper()
	resp, err := http.Get(s.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	var body APIResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("GET %s: invalid JSON: %v", path, err)
		}
	}
	return resp, body
}

func (s *testStack) dial(t *testing.T, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func writeEvent(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	frame, err := protocol.Encode(event, data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var env protocol.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("invalid frame %q: %v", frame, err)
	}
	return env
}

// remarshal decodes the generic Data field into out.
func remarshal(t *testing.T, in interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
}

func TestHealthLive(t *testing.T) {
	s := newTestStack(t, nil)

	resp, body := s.get(t, "/api/v1/health/live")
	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Fatalf("status = %d, body = %+v", resp.StatusCode, body)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestHealthReady(t *testing.T) {
	s := newTestStack(t, nil)

	s.handler.SetReady(false)
	resp, body := s.get(t, "/api/v1/health/ready")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("not ready status = %d, want 503", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v", body.Error)
	}

	s.handler.SetReady(true)
	resp, body = s.get(t, "/api/v1/health/ready")
	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Errorf("ready status = %d, body = %+v", resp.StatusCode, body)
	}
}

func TestRequestIDInResponse(t *testing.T) {
	s := newTestStack(t, nil)

	req, _ := http.NewRequest(http.MethodGet, s.server.URL+"/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var body APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Header.Get("X-Request-ID") != "req-123" {
		t.Errorf("X-Request-ID header = %q", resp.Header.Get("X-Request-ID"))
	}
	if body.Meta == nil || body.Meta.RequestID != "req-123" {
		t.Errorf("meta = %+v", body.Meta)
	}
}

func TestRooms_Empty(t *testing.T) {
	s := newTestStack(t, nil)

	resp, body := s.get(t, "/api/v1/rooms")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Meta == nil || body.Meta.Count == nil || *body.Meta.Count != 0 {
		t.Errorf("meta = %+v, want count 0", body.Meta)
	}
}

func TestRooms_AfterJoin(t *testing.T) {
	s := newTestStack(t, nil)

	conn, _, err := s.dial(t, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	writeEvent(t, conn, protocol.EventJoinRoom, map[string]string{"roomId": "abc123", "userName": "Alice"})

	for _, want := range []string{protocol.EventSyncFiles, protocol.EventSyncBoard, protocol.EventActiveUsers} {
		if env := readEvent(t, conn); env.Type != want {
			t.Fatalf("got %q, want %q", env.Type, want)
		}
	}

	_, body := s.get(t, "/api/v1/rooms")
	var rooms []RoomSummary
	remarshal(t, body.Data, &rooms)
	if len(rooms) != 1 || rooms[0].ID != "abc123" || rooms[0].Participants != 1 || rooms[0].Files != 1 {
		t.Fatalf("rooms = %+v", rooms)
	}

	resp, body := s.get(t, "/api/v1/rooms/abc123")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var detail RoomDetail
	remarshal(t, body.Data, &detail)
	if len(detail.FileTable) != 1 || detail.FileTable[0].Name != "main.js" || detail.FileTable[0].Language != "javascript" {
		t.Errorf("file table = %+v", detail.FileTable)
	}
	if len(detail.Roster) != 1 || detail.Roster[0].Name != "Alice" || detail.Roster[0].Color == "" {
		t.Errorf("roster = %+v", detail.Roster)
	}
}

func TestGetRoom_Errors(t *testing.T) {
	s := newTestStack(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"unknown room", "/api/v1/rooms/nope", http.StatusNotFound, ErrCodeNotFound},
		{"whitespace id", "/api/v1/rooms/bad%20id", http.StatusBadRequest, ErrCodeValidationFailed},
		{"unknown route", "/api/v1/nothing", http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.get(t, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if body.Error == nil || body.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", body.Error, tt.code)
			}
		})
	}
}

func TestWebSocket_OriginPolicy(t *testing.T) {
	restricted := func(cfg *config.Config) {
		cfg.Security.CORSOrigins = []string{"https://app.example"}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		origin string
		ok     bool
	}{
		{"wildcard accepts missing origin", nil, "", true},
		{"wildcard accepts any origin", nil, "https://elsewhere.example", true},
		{"listed origin", restricted, "https://app.example", true},
		{"unlisted origin", restricted, "https://evil.example", false},
		{"missing origin", restricted, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStack(t, tt.mutate)
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			_, resp, err := s.dial(t, header)
			if tt.ok && err != nil {
				t.Fatalf("dial failed: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("dial succeeded, want rejection")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response = %+v, want 403", resp)
				}
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestStack(t, func(cfg *config.Config) {
		cfg.Security.RateLimitReqs = 2
		cfg.Security.RateLimitWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		if resp, _ := s.get(t, "/api/v1/rooms"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, body := s.get(t, "/api/v1/rooms")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", body.Error)
	}

	// Health probes have their own budget.
	if resp, _ := s.get(t, "/api/v1/health/live"); resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	s := newTestStack(t, func(cfg *config.Config) {
		cfg.Security.RateLimitReqs = 1
		cfg.Security.RateLimitDisabled = true
	})

	for i := 0; i < 3; i++ {
		if resp, _ := s.get(t, "/api/v1/rooms"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	s.get(t, "/api/v1/rooms")

	resp, err := http.Get(s.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	for _, want := range []string{"syncroom_api_requests_total", "syncroom_sessions"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestStack(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, s.server.URL+"/api/v1/rooms", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://app.example", "https://app.example"},
		{"evil\nforged", `evil\x0aforged`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
