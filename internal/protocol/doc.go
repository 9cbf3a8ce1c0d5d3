// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

/*
Package protocol defines the Syncroom wire format.

Every frame is a JSON envelope carrying an event name and an optional payload:

	{"type": "join-room", "data": {"sessionId": "abc123", "userName": "Alice"}}

Inbound frames decode into a closed set of Event variants (JoinRoom, LeaveRoom,
CursorMove, SelectionChange, ChatMessage, CodeChange, CreateFile, DeleteFile,
DrawLine, ClearBoard, Ping). Decode validates payloads at the boundary and
returns a *DecodeError wrapping ErrUnknownEvent or ErrMalformed; it never
returns a partially populated event.

Payloads name the target session with either "sessionId" or the legacy
"roomId"; when both are present "sessionId" wins.

Outbound frames are built with Encode, which marshals the envelope once so the
same bytes can be fanned out to every member of a group.

Inbound events:

	join-room         {sessionId, userName?}
	leave-room        {sessionId}
	cursor-move       {sessionId, position}
	selection-change  {sessionId, selection}
	chat-message      {sessionId, message, userName}
	code-change       {sessionId, fileName, code}
	create-file       {sessionId, fileName, language}
	delete-file       {sessionId, fileName}
	draw-line         {sessionId, prevPoint, currentPoint, color, width}
	clear-board       {sessionId}
	ping              (no payload)

Outbound events:

	sync-files        map of file name to {name, language, content}
	sync-board        {strokes}
	active-users      [{id, name, color}]
	cursor-move       {userId, userName, userColor, position}
	selection-change  {userId, userName, userColor, selection}
	chat-message      {sender, message, timestamp, isSystem}
	code-change       {fileName, code}
	file-created      {name, language, content}
	file-deleted      "name"
	draw-line         {prevPoint, currentPoint, color, width}
	clear-board       (no payload)
	pong              (no payload)
	error             {event, reason}
*/
package protocol
