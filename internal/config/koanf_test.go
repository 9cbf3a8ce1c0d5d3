// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a nonexistent file and moves into an empty
// directory so no stray config.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Relay.SeedFileName != "main.js" {
		t.Errorf("Relay.SeedFileName = %q, want main.js", cfg.Relay.SeedFileName)
	}
	if cfg.Relay.SeedLanguage != "javascript" {
		t.Errorf("Relay.SeedLanguage = %q, want javascript", cfg.Relay.SeedLanguage)
	}
	if cfg.Relay.SeedContent != "// Start coding here..." {
		t.Errorf("Relay.SeedContent = %q", cfg.Relay.SeedContent)
	}
	if cfg.Relay.SessionIdleTTL != 30*time.Minute {
		t.Errorf("Relay.SessionIdleTTL = %v, want 30m", cfg.Relay.SessionIdleTTL)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "4100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("PROTECT_SEED_FILE", "false")
	t.Setenv("INBOUND_RATE", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Relay.SessionIdleTTL != 5*time.Minute {
		t.Errorf("Relay.SessionIdleTTL = %v, want 5m", cfg.Relay.SessionIdleTTL)
	}
	if cfg.Relay.ProtectSeedFile {
		t.Error("Relay.ProtectSeedFile should be false from env")
	}
	if cfg.Relay.InboundRate != 20 {
		t.Errorf("Relay.InboundRate = %v, want 20", cfg.Relay.InboundRate)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "syncroom.yaml")
	content := `
server:
  port: 5050
relay:
  seed_file_name: index.ts
  seed_language: typescript
  whiteboard_history: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 5050 {
		t.Errorf("Server.Port = %d, want 5050", cfg.Server.Port)
	}
	if cfg.Relay.SeedFileName != "index.ts" || cfg.Relay.SeedLanguage != "typescript" {
		t.Errorf("seed = %q/%q, want index.ts/typescript", cfg.Relay.SeedFileName, cfg.Relay.SeedLanguage)
	}
	if cfg.Relay.WhiteboardHistory {
		t.Error("Relay.WhiteboardHistory should be false from file")
	}
	if cfg.Relay.SeedContent != "// Start coding here..." {
		t.Errorf("unset keys should keep defaults, got SeedContent %q", cfg.Relay.SeedContent)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "syncroom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 5050\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("Server.Port = %d, want 6060 (env wins)", cfg.Server.Port)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for port 0")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"PORT":             "server.port",
		"HTTP_PORT":        "server.port",
		"LOG_FORMAT":       "logging.format",
		"SEED_FILE_NAME":   "relay.seed_file_name",
		"SESSION_IDLE_TTL": "relay.session_idle_ttl",
		"CORS_ORIGINS":     "security.cors_origins",
		"HOME":             "",
		"PATH":             "",
	}

	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
