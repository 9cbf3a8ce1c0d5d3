// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package relay

import (
	"github.com/syncroom/syncroom/internal/protocol"
	"github.com/syncroom/syncroom/internal/session"
)

func wireFile(f session.File) protocol.File {
	return protocol.File{Name: f.Name, Language: f.Language, Content: f.Content}
}

func fileSnapshot(files map[string]session.File) protocol.FileSnapshot {
	out := make(protocol.FileSnapshot, len(files))
	for name, f := range files {
		out[name] = wireFile(f)
	}
	return out
}

func users(roster []session.Participant) []protocol.User {
	out := make([]protocol.User, len(roster))
	for i, p := range roster {
		out[i] = protocol.User{ID: p.ConnID, Name: p.Name, Color: p.Color}
	}
	return out
}

func wireStrokes(strokes []session.Stroke) []protocol.Stroke {
	out := make([]protocol.Stroke, len(strokes))
	for i, st := range strokes {
		var prev *protocol.Point
		if st.Prev != nil {
			prev = &protocol.Point{X: st.Prev.X, Y: st.Prev.Y}
		}
		out[i] = protocol.Stroke{
			PrevPoint:    prev,
			CurrentPoint: protocol.Point{X: st.Current.X, Y: st.Current.Y},
			Color:        st.Color,
			Width:        st.Width,
		}
	}
	return out
}

func sessionStroke(st protocol.Stroke) session.Stroke {
	var prev *session.Point
	if st.PrevPoint != nil {
		prev = &session.Point{X: st.PrevPoint.X, Y: st.PrevPoint.Y}
	}
	return session.Stroke{
		Prev:    prev,
		Current: session.Point{X: st.CurrentPoint.X, Y: st.CurrentPoint.Y},
		Color:   st.Color,
		Width:   st.Width,
	}
}
