// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

// Package config loads and validates Syncroom's runtime configuration.
//
// Configuration is layered with koanf v2 (highest priority wins):
//
//  1. Environment variables (PORT, LOG_LEVEL, SESSION_IDLE_TTL, ...)
//  2. YAML config file (CONFIG_PATH, ./config.yaml, /etc/syncroom/config.yaml)
//  3. Built-in defaults (see defaultConfig)
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/syncroom/syncroom/internal/logging"
)

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Relay    RelayConfig    `koanf:"relay"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig mirrors logging.Config for the loadable subset.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// RelayConfig holds session and relay behaviour.
type RelayConfig struct {
	// Seed file created in every new session.
	SeedFileName string `koanf:"seed_file_name"`
	SeedLanguage string `koanf:"seed_language"`
	SeedContent  string `koanf:"seed_content"`

	// ProtectSeedFile rejects delete-file requests targeting the seed file.
	ProtectSeedFile bool `koanf:"protect_seed_file"`

	// WhiteboardHistory retains draw-line strokes so late joiners receive the
	// current board. WhiteboardMaxStrokes bounds the retained history per session.
	WhiteboardHistory    bool `koanf:"whiteboard_history"`
	WhiteboardMaxStrokes int  `koanf:"whiteboard_max_strokes"`

	// SessionIdleTTL evicts sessions with an empty roster after this much
	// inactivity. Zero keeps sessions for the life of the process.
	SessionIdleTTL   time.Duration `koanf:"session_idle_ttl"`
	EvictionInterval time.Duration `koanf:"eviction_interval"`

	MaxMessageSize int64 `koanf:"max_message_size"`
	SendBuffer     int   `koanf:"send_buffer"`

	// InboundRate limits events per second per connection; zero disables.
	InboundRate  float64 `koanf:"inbound_rate"`
	InboundBurst int     `koanf:"inbound_burst"`

	// NotifyRejections sends an error event back to the originator of a
	// rejected message instead of dropping it silently.
	NotifyRejections bool `koanf:"notify_rejections"`
}

// SecurityConfig holds CORS and HTTP rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// AllowsAllOrigins reports whether the CORS list contains the wildcard.
func (c *Config) AllowsAllOrigins() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRelay(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout < 0 {
		return invalid("server.timeout must not be negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return invalid("server.shutdown_timeout must not be negative")
	}
	switch c.Server.Environment {
	case "", "development", "staging", "production":
		return nil
	default:
		return invalid("server.environment must be development, staging or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateLogging() error {
	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
		return nil
	default:
		return invalid("logging.format must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateRelay() error {
	r := c.Relay
	if strings.TrimSpace(r.SeedFileName) == "" {
		return invalid("relay.seed_file_name must not be empty")
	}
	if r.WhiteboardMaxStrokes < 0 {
		return invalid("relay.whiteboard_max_strokes must not be negative")
	}
	if r.SessionIdleTTL < 0 {
		return invalid("relay.session_idle_ttl must not be negative")
	}
	if r.SessionIdleTTL > 0 && r.EvictionInterval <= 0 {
		return invalid("relay.eviction_interval must be positive when session_idle_ttl is set")
	}
	if r.MaxMessageSize <= 0 {
		return invalid("relay.max_message_size must be positive")
	}
	if r.SendBuffer <= 0 {
		return invalid("relay.send_buffer must be positive")
	}
	if r.InboundRate < 0 {
		return invalid("relay.inbound_rate must not be negative")
	}
	if r.InboundRate > 0 && r.InboundBurst <= 0 {
		return invalid("relay.inbound_burst must be positive when inbound_rate is set")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return invalid("security.rate_limit_reqs must be positive")
	}
	if c.Security.RateLimitWindow <= 0 {
		return invalid("security.rate_limit_window must be positive")
	}
	return nil
}
