// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/syncroom/config.yaml",
	"/etc/syncroom/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied before file and env.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            3000,
			Timeout:         15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Relay: RelayConfig{
			SeedFileName:         "main.js",
			SeedLanguage:         "javascript",
			SeedContent:          "// Start coding here...",
			ProtectSeedFile:      true,
			WhiteboardHistory:    true,
			WhiteboardMaxStrokes: 5000,
			SessionIdleTTL:       30 * time.Minute,
			EvictionInterval:     time.Minute,
			MaxMessageSize:       512 * 1024,
			SendBuffer:           256,
			InboundRate:          0,
			InboundBurst:         50,
			NotifyRejections:     false,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Defaults returns a copy of the built-in configuration.
func Defaults() *Config {
	return defaultConfig()
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they come from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak into
// the configuration.
var envMappings = map[string]string{
	"port":             "server.port",
	"http_port":        "server.port",
	"http_host":        "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"seed_file_name":         "relay.seed_file_name",
	"seed_language":          "relay.seed_language",
	"seed_content":           "relay.seed_content",
	"protect_seed_file":      "relay.protect_seed_file",
	"whiteboard_history":     "relay.whiteboard_history",
	"whiteboard_max_strokes": "relay.whiteboard_max_strokes",
	"session_idle_ttl":       "relay.session_idle_ttl",
	"eviction_interval":      "relay.eviction_interval",
	"ws_max_message_size":    "relay.max_message_size",
	"ws_send_buffer":         "relay.send_buffer",
	"inbound_rate":           "relay.inbound_rate",
	"inbound_burst":          "relay.inbound_burst",
	"notify_rejections":      "relay.notify_rejections",

	"cors_origins":       "security.cors_origins",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to a koanf path, or ""
// to skip it.
//
//   - PORT -> server.port
//   - LOG_LEVEL -> logging.level
//   - SESSION_IDLE_TTL -> relay.session_idle_ttl
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
