// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package relay

import (
	"errors"
	"fmt"

	"github.com/syncroom/syncroom/internal/protocol"
	"github.com/syncroom/syncroom/internal/session"
)

// join adds the sender to the roster, subscribes it to the session group,
// sends it the snapshot and broadcasts the roster to everyone.
func (r *Router) join(connID string, e *protocol.JoinRoom) error {
	s, created := r.dir.GetOrCreate(e.SessionID)
	if created {
		r.logger.Info().Str("session_id", s.ID()).Msg("session created")
	}

	name := displayName(e.UserName)
	if name == "" {
		name = FallbackName(connID)
	}

	roster, files, strokes := s.Join(session.Participant{
		ConnID: connID,
		Name:   name,
		Color:  r.opts.Palette(),
	})
	r.dir.Track(connID, s.ID())
	r.out.JoinGroup(connID, s.ID())

	r.send(connID, protocol.EventSyncFiles, fileSnapshot(files))
	if r.opts.WhiteboardHistory {
		r.send(connID, protocol.EventSyncBoard, protocol.BoardSnapshot{Strokes: wireStrokes(strokes)})
	}
	r.emit(s.ID(), "", protocol.EventActiveUsers, users(roster))

	r.logger.Info().
		Str("conn_id", connID).
		Str("session_id", s.ID()).
		Str("user_name", name).
		Int("participants", len(roster)).
		Msg("participant joined")
	return nil
}

// leave is the explicit counterpart of disconnect for a single session.
func (r *Router) leave(connID string, e *protocol.LeaveRoom) error {
	r.out.LeaveGroup(connID, e.SessionID)
	r.dir.Untrack(connID, e.SessionID)

	s, ok := r.dir.Get(e.SessionID)
	if !ok {
		return fmt.Errorf("%w: session %q", ErrRosterMiss, e.SessionID)
	}
	roster, ok := s.Leave(connID)
	if !ok {
		return ErrRosterMiss
	}
	r.emit(s.ID(), "", protocol.EventActiveUsers, users(roster))
	return nil
}

func (r *Router) cursorMove(connID string, e *protocol.CursorMove) error {
	p, err := r.sender(connID, e.SessionID)
	if err != nil {
		return err
	}
	r.emit(e.SessionID, connID, protocol.EventCursorMove, protocol.CursorRelay{
		UserID:    connID,
		UserName:  p.Name,
		UserColor: p.Color,
		Position:  e.Position,
	})
	return nil
}

func (r *Router) selectionChange(connID string, e *protocol.SelectionChange) error {
	p, err := r.sender(connID, e.SessionID)
	if err != nil {
		return err
	}
	r.emit(e.SessionID, connID, protocol.EventSelectionChange, protocol.SelectionRelay{
		UserID:    connID,
		UserName:  p.Name,
		UserColor: p.Color,
		Selection: e.Selection,
	})
	return nil
}

// sender resolves the roster entry of connID in sessionID.
func (r *Router) sender(connID, sessionID string) (session.Participant, error) {
	s, ok := r.dir.Get(sessionID)
	if !ok {
		return session.Participant{}, fmt.Errorf("%w: session %q", ErrRosterMiss, sessionID)
	}
	p, ok := s.Participant(connID)
	if !ok {
		return session.Participant{}, ErrRosterMiss
	}
	return p, nil
}

// chatMessage is delivered to the whole group, sender included.
func (r *Router) chatMessage(connID string, e *protocol.ChatMessage) error {
	sender := displayName(e.UserName)
	if s, ok := r.dir.Get(e.SessionID); ok {
		s.Touch()
		if sender == "" {
			if p, ok := s.Participant(connID); ok {
				sender = p.Name
			}
		}
	}
	if sender == "" {
		sender = FallbackName(connID)
	}

	r.emit(e.SessionID, "", protocol.EventChatMessage, protocol.ChatRelay{
		Sender:    sender,
		Message:   e.Message,
		Timestamp: r.opts.Clock().Format("15:04"),
	})
	return nil
}

// codeChange overwrites the file if it exists and relays to peers either way.
func (r *Router) codeChange(connID string, e *protocol.CodeChange) error {
	var err error
	if s, ok := r.dir.Get(e.SessionID); ok {
		err = s.UpdateContent(e.FileName, e.Code)
	} else {
		err = fmt.Errorf("%w: %q", ErrSessionNotFound, e.SessionID)
	}

	r.emit(e.SessionID, connID, protocol.EventCodeChange, protocol.CodeRelay{
		FileName: e.FileName,
		Code:     e.Code,
	})
	return err
}

// createFile is idempotent: an existing name produces no broadcast.
func (r *Router) createFile(_ string, e *protocol.CreateFile) error {
	s, ok := r.dir.Get(e.SessionID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, e.SessionID)
	}

	f, err := s.CreateFile(e.FileName, e.Language)
	if errors.Is(err, session.ErrFileExists) {
		r.logger.Debug().
			Str("session_id", e.SessionID).
			Str("file_name", e.FileName).
			Msg("create-file for existing name ignored")
		return nil
	}
	if err != nil {
		return err
	}

	r.emit(e.SessionID, "", protocol.EventFileCreated, wireFile(f))
	return nil
}

// deleteFile broadcasts the deletion whether or not the file existed. A
// protected seed file is neither removed nor announced.
func (r *Router) deleteFile(_ string, e *protocol.DeleteFile) error {
	s, ok := r.dir.Get(e.SessionID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, e.SessionID)
	}

	err := s.DeleteFile(e.FileName)
	if errors.Is(err, session.ErrSeedFileProtected) {
		return fmt.Errorf("delete %q: %w", e.FileName, err)
	}

	r.emit(e.SessionID, "", protocol.EventFileDeleted, e.FileName)
	return err
}

// drawLine relays the segment to peers and retains it when history is on.
func (r *Router) drawLine(connID string, e *protocol.DrawLine) error {
	stroke := protocol.Stroke{
		PrevPoint:    e.PrevPoint,
		CurrentPoint: *e.CurrentPoint,
		Color:        e.Color,
		Width:        e.Width,
	}

	if s, ok := r.dir.Get(e.SessionID); ok {
		if r.opts.WhiteboardHistory {
			s.AppendStroke(sessionStroke(stroke))
		} else {
			s.Touch()
		}
	}

	r.emit(e.SessionID, connID, protocol.EventDrawLine, stroke)
	return nil
}

// clearBoard is delivered to the whole group, sender included.
func (r *Router) clearBoard(_ string, e *protocol.ClearBoard) error {
	if s, ok := r.dir.Get(e.SessionID); ok {
		s.ClearStrokes()
	}
	r.emit(e.SessionID, "", protocol.EventClearBoard, nil)
	return nil
}
