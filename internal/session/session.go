// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

// Package session holds the in-memory state of collaborative workspaces.
//
// A Session owns a File Table (name to File), a Roster (connection id to
// Participant) and, optionally, the whiteboard strokes drawn since the last
// clear. The Directory owns every Session and creates each one exactly once.
//
// All Session methods are safe for concurrent use. Values returned from
// Session are copies; callers never hold references into session state.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrFileExists is returned by CreateFile when the name is taken.
	ErrFileExists = errors.New("file already exists")

	// ErrFileNotFound is returned when an operation names a missing file.
	ErrFileNotFound = errors.New("file not found")

	// ErrSeedFileProtected is returned by DeleteFile for the seed file when
	// seed protection is enabled.
	ErrSeedFileProtected = errors.New("seed file cannot be deleted")
)

// File is one entry of a session's File Table.
type File struct {
	Name     string
	Language string
	Content  string
}

// Participant is one roster entry.
type Participant struct {
	ConnID   string
	Name     string
	Color    string
	JoinedAt time.Time
}

// Point is a whiteboard coordinate.
type Point struct {
	X, Y float64
}

// Stroke is one retained draw-line segment. Prev is nil for the first segment
// of a line.
type Stroke struct {
	Prev    *Point
	Current Point
	Color   string
	Width   float64
}

// Info summarizes a session for inspection.
type Info struct {
	ID           string
	Participants int
	Files        int
	Strokes      int
	CreatedAt    time.Time
	LastActive   time.Time
}

type rosterEntry struct {
	Participant
	seq uint64
}

// Session is one collaborative workspace.
type Session struct {
	mu sync.Mutex

	id     string
	policy Policy
	now    func() time.Time

	files   map[string]File
	roster  map[string]rosterEntry
	joinSeq uint64
	strokes []Stroke

	createdAt  time.Time
	lastActive time.Time
}

func newSession(id string, policy Policy, now func() time.Time) *Session {
	t := now()
	seed := policy.Seed
	return &Session{
		id:         id,
		policy:     policy,
		now:        now,
		files:      map[string]File{seed.Name: seed},
		roster:     make(map[string]rosterEntry),
		createdAt:  t,
		lastActive: t,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// touch records activity. Callers hold s.mu.
func (s *Session) touch() {
	s.lastActive = s.now()
}

// Touch records activity without changing state.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
}

// AddParticipant inserts p into the roster. A connection that joins again
// keeps its roster position and gets the new name and color. It reports
// whether an existing entry was replaced.
func (s *Session) AddParticipant(p Participant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addLocked(p)
}

func (s *Session) addLocked(p Participant) bool {
	s.touch()
	if p.JoinedAt.IsZero() {
		p.JoinedAt = s.lastActive
	}

	if existing, ok := s.roster[p.ConnID]; ok {
		p.JoinedAt = existing.JoinedAt
		s.roster[p.ConnID] = rosterEntry{Participant: p, seq: existing.seq}
		return true
	}

	s.joinSeq++
	s.roster[p.ConnID] = rosterEntry{Participant: p, seq: s.joinSeq}
	return false
}

// RemoveParticipant deletes the roster entry for connID and reports whether
// one existed.
func (s *Session) RemoveParticipant(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roster[connID]; !ok {
		return false
	}
	delete(s.roster, connID)
	s.touch()
	return true
}

// Participant looks up the roster entry for connID.
func (s *Session) Participant(connID string) (Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.roster[connID]
	return e.Participant, ok
}

// Roster returns the participants in join order.
func (s *Session) Roster() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rosterLocked()
}

func (s *Session) rosterLocked() []Participant {
	entries := make([]rosterEntry, 0, len(s.roster))
	for _, e := range s.roster {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	out := make([]Participant, len(entries))
	for i, e := range entries {
		out[i] = e.Participant
	}
	return out
}

// Files returns a copy of the File Table.
func (s *Session) Files() map[string]File {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filesLocked()
}

func (s *Session) filesLocked() map[string]File {
	out := make(map[string]File, len(s.files))
	for name, f := range s.files {
		out[name] = f
	}
	return out
}

// Join adds p to the roster and returns, under the same lock, the roster,
// File Table and retained strokes the joiner must be sent. The snapshot
// therefore reflects every mutation applied before the join.
func (s *Session) Join(p Participant) (roster []Participant, files map[string]File, strokes []Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addLocked(p)
	return s.rosterLocked(), s.filesLocked(), s.strokesLocked()
}

// Leave removes connID from the roster and returns the remaining roster. ok
// is false, and the roster nil, when connID was not a participant.
func (s *Session) Leave(connID string) (roster []Participant, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roster[connID]; !ok {
		return nil, false
	}
	delete(s.roster, connID)
	s.touch()
	return s.rosterLocked(), true
}

// CreateFile inserts an empty file. It returns ErrFileExists, leaving the
// table unchanged, when the name is taken.
func (s *Session) CreateFile(name, language string) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if _, ok := s.files[name]; ok {
		return File{}, ErrFileExists
	}
	f := File{Name: name, Language: language}
	s.files[name] = f
	return f, nil
}

// DeleteFile removes a file. It returns ErrFileNotFound when the name is
// absent and ErrSeedFileProtected when the policy protects the seed file.
func (s *Session) DeleteFile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.policy.ProtectSeed && name == s.policy.Seed.Name {
		return ErrSeedFileProtected
	}
	if _, ok := s.files[name]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, name)
	return nil
}

// UpdateContent overwrites a file's content. Last write wins.
func (s *Session) UpdateContent(name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	f, ok := s.files[name]
	if !ok {
		return ErrFileNotFound
	}
	f.Content = content
	s.files[name] = f
	return nil
}

// AppendStroke retains a whiteboard segment, dropping the oldest once the
// policy limit is reached. A zero limit keeps every stroke.
func (s *Session) AppendStroke(st Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if st.Prev != nil {
		prev := *st.Prev
		st.Prev = &prev
	}
	s.strokes = append(s.strokes, st)

	if limit := s.policy.MaxStrokes; limit > 0 && len(s.strokes) > limit {
		n := copy(s.strokes, s.strokes[len(s.strokes)-limit:])
		clear(s.strokes[n:])
		s.strokes = s.strokes[:n]
	}
}

// ClearStrokes empties the retained whiteboard.
func (s *Session) ClearStrokes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.strokes = nil
}

// Strokes returns the retained whiteboard segments, oldest first.
func (s *Session) Strokes() []Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.strokesLocked()
}

func (s *Session) strokesLocked() []Stroke {
	out := make([]Stroke, len(s.strokes))
	copy(out, s.strokes)
	return out
}

// Info returns a summary of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Info{
		ID:           s.id,
		Participants: len(s.roster),
		Files:        len(s.files),
		Strokes:      len(s.strokes),
		CreatedAt:    s.createdAt,
		LastActive:   s.lastActive,
	}
}

// idle reports whether the roster is empty and nothing has happened for ttl.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.roster) == 0 && now.Sub(s.lastActive) >= ttl
}
