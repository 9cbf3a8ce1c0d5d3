// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package protocol

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/syncroom/syncroom/internal/validation"
)

// Event is one decoded inbound message. The set of implementations is closed;
// consumers switch over the concrete pointer types.
type Event interface {
	// Name returns the wire event name.
	Name() string
	// Session returns the target session id, or "" for session-less events.
	Session() string

	isEvent()
}

// Target names the session an event applies to. Older clients send "roomId".
type Target struct {
	SessionID string `json:"sessionId" validate:"sessionid"`
	RoomID    string `json:"roomId,omitempty" validate:"-"`
}

// Session returns the resolved session id.
func (t Target) Session() string { return t.SessionID }

func (t *Target) resolve() {
	if t.SessionID == "" {
		t.SessionID = t.RoomID
	}
	t.RoomID = ""
}

// Point is a whiteboard coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type (
	JoinRoom struct {
		Target
		UserName string `json:"userName,omitempty"`
	}

	LeaveRoom struct {
		Target
	}

	// CursorMove and SelectionChange carry editor-defined positions that the
	// relay forwards without interpreting.
	CursorMove struct {
		Target
		Position json.RawMessage `json:"position" validate:"required"`
	}

	SelectionChange struct {
		Target
		Selection json.RawMessage `json:"selection" validate:"required"`
	}

	ChatMessage struct {
		Target
		Message  string `json:"message"`
		UserName string `json:"userName,omitempty"`
	}

	CodeChange struct {
		Target
		FileName string `json:"fileName" validate:"filename"`
		Code     string `json:"code"`
	}

	CreateFile struct {
		Target
		FileName string `json:"fileName" validate:"filename"`
		Language string `json:"language" validate:"max=64"`
	}

	DeleteFile struct {
		Target
		FileName string `json:"fileName" validate:"filename"`
	}

	DrawLine struct {
		Target
		PrevPoint    *Point  `json:"prevPoint"`
		CurrentPoint *Point  `json:"currentPoint" validate:"required"`
		Color        string  `json:"color" validate:"max=64"`
		Width        float64 `json:"width" validate:"gte=0,lte=1000"`
	}

	ClearBoard struct {
		Target
	}

	// Ping is answered with pong. It carries no payload.
	Ping struct{}
)

func (*JoinRoom) Name() string        { return EventJoinRoom }
func (*LeaveRoom) Name() string       { return EventLeaveRoom }
func (*CursorMove) Name() string      { return EventCursorMove }
func (*SelectionChange) Name() string { return EventSelectionChange }
func (*ChatMessage) Name() string     { return EventChatMessage }
func (*CodeChange) Name() string      { return EventCodeChange }
func (*CreateFile) Name() string      { return EventCreateFile }
func (*DeleteFile) Name() string      { return EventDeleteFile }
func (*DrawLine) Name() string        { return EventDrawLine }
func (*ClearBoard) Name() string      { return EventClearBoard }
func (*Ping) Name() string            { return EventPing }

func (*Ping) Session() string { return "" }

func (*JoinRoom) isEvent()        {}
func (*LeaveRoom) isEvent()       {}
func (*CursorMove) isEvent()      {}
func (*SelectionChange) isEvent() {}
func (*ChatMessage) isEvent()     {}
func (*CodeChange) isEvent()      {}
func (*CreateFile) isEvent()      {}
func (*DeleteFile) isEvent()      {}
func (*DrawLine) isEvent()        {}
func (*ClearBoard) isEvent()      {}
func (*Ping) isEvent()            {}

// targeted is implemented by every variant that embeds Target.
type targeted interface {
	target() *Target
}

func (t *Target) target() *Target { return t }

// newEvent returns an empty variant for a wire name.
func newEvent(name string) (Event, bool) {
	switch name {
	case EventJoinRoom:
		return &JoinRoom{}, true
	case EventLeaveRoom:
		return &LeaveRoom{}, true
	case EventCursorMove:
		return &CursorMove{}, true
	case EventSelectionChange:
		return &SelectionChange{}, true
	case EventChatMessage:
		return &ChatMessage{}, true
	case EventCodeChange:
		return &CodeChange{}, true
	case EventCreateFile:
		return &CreateFile{}, true
	case EventDeleteFile:
		return &DeleteFile{}, true
	case EventDrawLine:
		return &DrawLine{}, true
	case EventClearBoard:
		return &ClearBoard{}, true
	case EventPing:
		return &Ping{}, true
	default:
		return nil, false
	}
}

var jsonNull = []byte("null")

// Decode parses and validates one inbound frame.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if env.Type == "" {
		return nil, &DecodeError{Err: fmt.Errorf("%w: missing type", ErrMalformed)}
	}

	ev, ok := newEvent(env.Type)
	if !ok {
		return nil, &DecodeError{Event: env.Type, Err: ErrUnknownEvent}
	}

	t, hasTarget := ev.(targeted)
	if !hasTarget {
		return ev, nil
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil, &DecodeError{Event: env.Type, Err: fmt.Errorf("%w: missing payload", ErrMalformed)}
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, &DecodeError{Event: env.Type, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	t.target().resolve()

	if verr := validation.ValidateStruct(ev); verr != nil {
		return nil, &DecodeError{Event: env.Type, Err: fmt.Errorf("%w: %s", ErrMalformed, verr.Error())}
	}
	return ev, nil
}
