// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/syncroom/syncroom/internal/logging"
)

// SessionEvicter is satisfied by *session.Directory.
type SessionEvicter interface {
	EvictIdle(ttl time.Duration) []string
}

// JanitorService periodically evicts sessions whose roster is empty and whose
// last activity is older than the TTL.
//
// Example usage:
//
//	svc := services.NewJanitorService(directory, 30*time.Minute, time.Minute)
//	tree.AddRelayService(svc)
type JanitorService struct {
	evicter  SessionEvicter
	ttl      time.Duration
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewJanitorService creates a janitor. A non-positive interval defaults to one minute.
func NewJanitorService(evicter SessionEvicter, ttl, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{
		evicter:  evicter,
		ttl:      ttl,
		interval: interval,
		logger:   logging.WithComponent("session-janitor"),
		name:     "session-janitor",
	}
}

// Serve implements suture.Service.
//
// A non-positive TTL disables eviction; the service then idles until shutdown
// instead of returning, which would make suture restart it.
func (j *JanitorService) Serve(ctx context.Context) error {
	if j.ttl <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *JanitorService) sweep() {
	evicted := j.evicter.EvictIdle(j.ttl)
	if len(evicted) == 0 {
		return
	}
	j.logger.Info().
		Strs("session_ids", evicted).
		Int("count", len(evicted)).
		Dur("ttl", j.ttl).
		Msg("evicted idle sessions")
}

// String implements fmt.Stringer for logging.
func (j *JanitorService) String() string {
	return j.name
}
