// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/syncroom/syncroom/internal/session"
	"github.com/syncroom/syncroom/internal/validation"
)

// RoomSummary describes one live session.
type RoomSummary struct {
	ID           string    `json:"id"`
	Participants int       `json:"participants"`
	Files        int       `json:"files"`
	Strokes      int       `json:"strokes"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
}

// RoomFile describes a file without its content.
type RoomFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Size     int    `json:"size"`
}

// RoomParticipant is one roster entry.
type RoomParticipant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoomDetail is a session's file table and roster.
type RoomDetail struct {
	RoomSummary
	FileTable []RoomFile        `json:"file_table"`
	Roster    []RoomParticipant `json:"roster"`
}

func summarize(info session.Info) RoomSummary {
	return RoomSummary{
		ID:           info.ID,
		Participants: info.Participants,
		Files:        info.Files,
		Strokes:      info.Strokes,
		CreatedAt:    info.CreatedAt,
		LastActive:   info.LastActive,
	}
}

// ListRooms returns a summary of every live session, ordered by id.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	sessions := h.directory.List()
	rooms := make([]RoomSummary, 0, len(sessions))
	for _, s := range sessions {
		rooms = append(rooms, summarize(s.Info()))
	}
	NewResponseWriter(w, r).SuccessList(rooms, len(rooms))
}

// GetRoom returns one session's file table and roster.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if !validation.ValidSessionID(id) {
		rw.ValidationError("invalid room id", map[string]string{"id": "must be a printable identifier without whitespace"})
		return
	}

	s, ok := h.directory.Get(id)
	if !ok {
		rw.NotFound("room not found")
		return
	}

	files := s.Files()
	detail := RoomDetail{
		RoomSummary: summarize(s.Info()),
		FileTable:   make([]RoomFile, 0, len(files)),
	}
	for _, f := range files {
		detail.FileTable = append(detail.FileTable, RoomFile{Name: f.Name, Language: f.Language, Size: len(f.Content)})
	}
	sort.Slice(detail.FileTable, func(i, j int) bool {
		return detail.FileTable[i].Name < detail.FileTable[j].Name
	})

	roster := s.Roster()
	detail.Roster = make([]RoomParticipant, 0, len(roster))
	for _, p := range roster {
		detail.Roster = append(detail.Roster, RoomParticipant{ID: p.ConnID, Name: p.Name, Color: p.Color, JoinedAt: p.JoinedAt})
	}

	rw.Success(detail)
}
