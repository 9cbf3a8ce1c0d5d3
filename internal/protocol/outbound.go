// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package protocol

import "github.com/goccy/go-json"

// File is the wire form of one File Table entry.
type File struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// FileSnapshot is the sync-files payload, keyed by file name.
type FileSnapshot map[string]File

// User is one roster entry in an active-users payload.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Stroke is the draw-line payload relayed to peers and replayed in sync-board.
type Stroke struct {
	PrevPoint    *Point  `json:"prevPoint"`
	CurrentPoint Point   `json:"currentPoint"`
	Color        string  `json:"color"`
	Width        float64 `json:"width"`
}

// BoardSnapshot is the sync-board payload.
type BoardSnapshot struct {
	Strokes []Stroke `json:"strokes"`
}

// CursorRelay is the cursor-move payload delivered to peers.
type CursorRelay struct {
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
	UserColor string          `json:"userColor"`
	Position  json.RawMessage `json:"position"`
}

// SelectionRelay is the selection-change payload delivered to peers.
type SelectionRelay struct {
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
	UserColor string          `json:"userColor"`
	Selection json.RawMessage `json:"selection"`
}

// ChatRelay is the chat-message payload delivered to the whole group.
type ChatRelay struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	IsSystem  bool   `json:"isSystem"`
}

// CodeRelay is the code-change payload delivered to peers.
type CodeRelay struct {
	FileName string `json:"fileName"`
	Code     string `json:"code"`
}

// Rejection is sent to the originator of a rejected frame when negative
// acknowledgements are enabled.
type Rejection struct {
	Event  string `json:"event,omitempty"`
	Reason string `json:"reason"`
}
