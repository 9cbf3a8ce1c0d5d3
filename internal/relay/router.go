// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

// Package relay routes inbound events to their handlers.
//
// The Router is transport-agnostic: it reads and mutates sessions through the
// session.Directory and reaches connections only through the Broadcaster
// interface. Dispatch, Reject and Disconnect must be called from one goroutine
// at a time (the gateway's hub loop) so each event runs to completion before
// the next begins.
//
// Handlers never report failures to clients unless NotifyRejections is set.
// Every outcome is classified for the syncroom_events_total metric.
package relay

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/syncroom/syncroom/internal/logging"
	"github.com/syncroom/syncroom/internal/metrics"
	"github.com/syncroom/syncroom/internal/protocol"
	"github.com/syncroom/syncroom/internal/session"
)

var (
	// ErrRosterMiss is returned for presence events from a connection that is
	// not in the target session's roster.
	ErrRosterMiss = errors.New("sender not in roster")

	// ErrSessionNotFound is returned for file operations on a session id that
	// has never been joined.
	ErrSessionNotFound = errors.New("session not found")
)

// Broadcaster delivers pre-encoded frames to connections and groups. Group
// ids are session ids.
type Broadcaster interface {
	Send(connID string, frame []byte)
	JoinGroup(connID, group string)
	LeaveGroup(connID, group string)
	// Emit sends to every member of group and returns the recipient count.
	Emit(group string, frame []byte) int
	// EmitExcept sends to every member of group other than except.
	EmitExcept(group, except string, frame []byte) int
}

// Options controls optional relay behaviour.
type Options struct {
	// WhiteboardHistory retains strokes and replays them to joiners.
	WhiteboardHistory bool

	// NotifyRejections sends an error event to the originator of a
	// malformed, rate-limited or refused frame.
	NotifyRejections bool

	// Clock stamps chat messages. Defaults to time.Now.
	Clock func() time.Time

	// Palette picks a participant color. Defaults to RandomColor.
	Palette func() string
}

// Router dispatches decoded events.
type Router struct {
	dir    *session.Directory
	out    Broadcaster
	opts   Options
	logger zerolog.Logger
}

// NewRouter creates a Router over dir that delivers through out.
func NewRouter(dir *session.Directory, out Broadcaster, opts Options) *Router {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Palette == nil {
		opts.Palette = RandomColor
	}
	return &Router{
		dir:    dir,
		out:    out,
		opts:   opts,
		logger: logging.WithComponent("relay"),
	}
}

// Dispatch handles one event to completion.
func (r *Router) Dispatch(connID string, ev protocol.Event) {
	start := time.Now()
	err := r.handle(connID, ev)
	r.finish(connID, ev.Name(), ev.Session(), err, time.Since(start))
}

// handle is the single exhaustive switch over inbound variants.
func (r *Router) handle(connID string, ev protocol.Event) error {
	switch e := ev.(type) {
	case *protocol.JoinRoom:
		return r.join(connID, e)
	case *protocol.LeaveRoom:
		return r.leave(connID, e)
	case *protocol.CursorMove:
		return r.cursorMove(connID, e)
	case *protocol.SelectionChange:
		return r.selectionChange(connID, e)
	case *protocol.ChatMessage:
		return r.chatMessage(connID, e)
	case *protocol.CodeChange:
		return r.codeChange(connID, e)
	case *protocol.CreateFile:
		return r.createFile(connID, e)
	case *protocol.DeleteFile:
		return r.deleteFile(connID, e)
	case *protocol.DrawLine:
		return r.drawLine(connID, e)
	case *protocol.ClearBoard:
		return r.clearBoard(connID, e)
	case *protocol.Ping:
		r.send(connID, protocol.EventPong, nil)
		return nil
	default:
		return fmt.Errorf("%w: %T", protocol.ErrUnknownEvent, ev)
	}
}

// Reject records a frame the gateway could not dispatch. event may be empty
// when the envelope itself was unreadable.
func (r *Router) Reject(connID, event string, err error) {
	r.finish(connID, event, "", err, 0)
}

// Disconnect removes connID from every roster it appears in and broadcasts
// the updated rosters. The gateway has already removed the connection from
// its groups. Calling Disconnect twice for the same id is a no-op.
func (r *Router) Disconnect(connID string) {
	ids := r.dir.Release(connID)
	for _, id := range ids {
		s, ok := r.dir.Get(id)
		if !ok {
			continue
		}
		roster, ok := s.Leave(connID)
		if !ok {
			continue
		}
		r.emit(id, "", protocol.EventActiveUsers, users(roster))
	}

	if len(ids) > 0 {
		r.logger.Debug().
			Str("conn_id", connID).
			Strs("sessions", ids).
			Msg("connection left sessions")
	}
}

// Outcome classifies a handler result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, protocol.ErrRateLimited):
		return metrics.OutcomeRateLimited
	case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrUnknownEvent):
		return metrics.OutcomeMalformed
	case errors.Is(err, session.ErrFileNotFound):
		return metrics.OutcomeUnknownFile
	case errors.Is(err, ErrSessionNotFound):
		return metrics.OutcomeUnknownSession
	case errors.Is(err, ErrRosterMiss):
		return metrics.OutcomeRosterMiss
	default:
		return metrics.OutcomeRejected
	}
}

func (r *Router) finish(connID, event, sessionID string, err error, elapsed time.Duration) {
	outcome := Outcome(err)

	// Unknown names come from clients; keep them out of metric labels.
	label := event
	if label == "" || errors.Is(err, protocol.ErrUnknownEvent) {
		label = "unknown"
	}
	metrics.RecordEvent(label, outcome, elapsed)

	var ev *zerolog.Event
	switch outcome {
	case metrics.OutcomeOK:
		ev = r.logger.Debug()
	case metrics.OutcomeMalformed, metrics.OutcomeRateLimited, metrics.OutcomeRejected:
		ev = r.logger.Warn().Err(err)
	default:
		ev = r.logger.Debug().Err(err)
	}
	ev.Str("conn_id", connID).
		Str("event", event).
		Str("session_id", sessionID).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("event handled")

	if err != nil && r.opts.NotifyRejections && notifiable(outcome) {
		r.send(connID, protocol.EventError, protocol.Rejection{Event: event, Reason: err.Error()})
	}
}

// notifiable outcomes are refusals. UnknownFile, UnknownSession and
// RosterMiss stay silent because the relay semantics treat them as no-ops.
func notifiable(outcome string) bool {
	switch outcome {
	case metrics.OutcomeMalformed, metrics.OutcomeRateLimited, metrics.OutcomeRejected:
		return true
	default:
		return false
	}
}

func (r *Router) encode(event string, payload interface{}) ([]byte, bool) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return nil, false
	}
	return frame, true
}

func (r *Router) send(connID, event string, payload interface{}) {
	if frame, ok := r.encode(event, payload); ok {
		r.out.Send(connID, frame)
	}
}

// emit sends to the whole group, or to everyone but except when it is set.
func (r *Router) emit(group, except, event string, payload interface{}) {
	frame, ok := r.encode(event, payload)
	if !ok {
		return
	}
	if except == "" {
		r.out.Emit(group, frame)
		return
	}
	r.out.EmitExcept(group, except, frame)
}

// MaxNameLength bounds display names, in runes. Longer names are cut, not
// rejected.
const MaxNameLength = 64

// displayName trims a client supplied name and cuts it to MaxNameLength.
func displayName(raw string) string {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:MaxNameLength]))
}

// FallbackName is the display name given to participants who join without one.
func FallbackName(connID string) string {
	prefix := connID
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return "User " + prefix
}

// RandomColor returns a random #rrggbb color. Colors are not unique.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}
