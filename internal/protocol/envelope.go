// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package protocol

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Inbound event names.
const (
	EventJoinRoom        = "join-room"
	EventLeaveRoom       = "leave-room"
	EventCursorMove      = "cursor-move"
	EventSelectionChange = "selection-change"
	EventChatMessage     = "chat-message"
	EventCodeChange      = "code-change"
	EventCreateFile      = "create-file"
	EventDeleteFile      = "delete-file"
	EventDrawLine        = "draw-line"
	EventClearBoard      = "clear-board"
	EventPing            = "ping"
)

// Outbound event names not shared with inbound ones.
const (
	EventSyncFiles   = "sync-files"
	EventSyncBoard   = "sync-board"
	EventActiveUsers = "active-users"
	EventFileCreated = "file-created"
	EventFileDeleted = "file-deleted"
	EventPong        = "pong"
	EventError       = "error"
)

var (
	// ErrUnknownEvent is returned for envelopes naming an event outside the catalogue.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrMalformed is returned for frames that are not valid JSON envelopes or
	// whose payload fails validation.
	ErrMalformed = errors.New("malformed request")

	// ErrRateLimited marks frames dropped by the per-connection inbound limiter.
	ErrRateLimited = errors.New("rate limited")
)

// Envelope is the frame wrapper for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeError describes a frame that could not be turned into an Event.
// Event holds the envelope type when it could be read.
type DecodeError struct {
	Event string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Event == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Event, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode builds a complete outbound frame. A nil payload omits "data".
func Encode(event string, payload interface{}) ([]byte, error) {
	env := Envelope{Type: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event, err)
		}
		env.Data = data
	}

	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", event, err)
	}
	return frame, nil
}
