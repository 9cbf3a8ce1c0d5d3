// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package session

import (
	"sort"
	"sync"
	"time"

	"github.com/syncroom/syncroom/internal/metrics"
)

// Policy configures every session a Directory creates.
type Policy struct {
	// Seed is placed in the File Table of each new session.
	Seed File

	// ProtectSeed makes DeleteFile reject the seed file name.
	ProtectSeed bool

	// MaxStrokes bounds retained whiteboard strokes; zero is unbounded.
	MaxStrokes int
}

// DefaultPolicy matches the stock client: a protected main.js seed.
func DefaultPolicy() Policy {
	return Policy{
		Seed: File{
			Name:     "main.js",
			Language: "javascript",
			Content:  "// Start coding here...",
		},
		ProtectSeed: true,
		MaxStrokes:  5000,
	}
}

// Directory maps session ids to sessions and tracks which sessions each
// connection has joined.
type Directory struct {
	mu       sync.Mutex
	sessions map[string]*Session
	conns    map[string]map[string]struct{}

	policy Policy
	now    func() time.Time
}

// Option customizes a Directory.
type Option func(*Directory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// NewDirectory creates an empty directory.
func NewDirectory(policy Policy, opts ...Option) *Directory {
	d := &Directory{
		sessions: make(map[string]*Session),
		conns:    make(map[string]map[string]struct{}),
		policy:   policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the policy applied to new sessions.
func (d *Directory) Policy() Policy {
	return d.policy
}

// GetOrCreate returns the session for id, creating it on first use. Concurrent
// first calls for the same id observe a single Session. The session is marked
// active so the idle sweep cannot remove it before the caller uses it.
func (d *Directory) GetOrCreate(id string) (s *Session, created bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.sessions[id]; ok {
		s.Touch()
		return s, false
	}

	s = newSession(id, d.policy, d.now)
	d.sessions[id] = s
	metrics.RelaySessions.Inc()
	return s, true
}

// Get returns the session for id without creating it.
func (d *Directory) Get(id string) (*Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[id]
	return s, ok
}

// List returns every session ordered by id.
func (d *Directory) List() []*Session {
	d.mu.Lock()
	out := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].id < out[j].id
	})
	return out
}

// Len returns the number of live sessions.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.sessions)
}

// Track records that connID is in the roster of sessionID.
func (d *Directory) Track(connID, sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.conns[connID]
	if !ok {
		set = make(map[string]struct{})
		d.conns[connID] = set
	}
	set[sessionID] = struct{}{}
}

// Untrack removes a single connID to sessionID association.
func (d *Directory) Untrack(connID, sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.conns[connID]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(d.conns, connID)
	}
}

// SessionsOf returns the ids of sessions connID has joined, sorted.
func (d *Directory) SessionsOf(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return sortedKeys(d.conns[connID])
}

// Release forgets connID and returns the sessions it had joined, sorted.
// A second call for the same connection returns nil.
func (d *Directory) Release(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := sortedKeys(d.conns[connID])
	delete(d.conns, connID)
	return ids
}

// EvictIdle removes sessions whose roster is empty and whose last activity is
// at least ttl old. It returns the evicted ids, sorted. A non-positive ttl
// evicts nothing.
func (d *Directory) EvictIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	var evicted []string
	for id, s := range d.sessions {
		if s.idle(now, ttl) {
			delete(d.sessions, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	metrics.RecordEviction(len(evicted))
	return evicted
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
