// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/syncroom/syncroom/internal/logging"
	"github.com/syncroom/syncroom/internal/metrics"
	"github.com/syncroom/syncroom/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientSeq orders clients for deterministic fan-out.
var clientSeq atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id  string
	seq uint64

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// groups is guarded by hub.mu.
	groups map[string]struct{}

	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient creates a Client with a fresh connection id. The client's logger
// is derived from ctx, so it carries the upgrade request's ids and conn_id.
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn) *Client {
	id := uuid.New().String()

	ctx = logging.ContextWithConnID(ctx, id)
	ctx = logging.ContextWithLogger(ctx, logging.LoggerFromContext(ctx).With().Str("component", "websocket").Logger())

	var limiter *rate.Limiter
	if hub.cfg.InboundRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(hub.cfg.InboundRate), hub.cfg.InboundBurst)
	}

	return &Client{
		id:      id,
		seq:     clientSeq.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.cfg.SendBuffer),
		groups:  make(map[string]struct{}),
		limiter: limiter,
		logger:  *logging.Ctx(ctx),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// readPump decodes frames from the connection and queues them for the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				metrics.RecordDrop(metrics.DropOversized)
				c.logger.Warn().Int64("limit", c.hub.cfg.MaxMessageSize).Msg("websocket frame exceeds size limit")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
				c.logger.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.RelayMessagesReceived.Inc()

		if !c.hub.enqueue(c.decode(frame)) {
			return
		}
	}
}

func (c *Client) decode(frame []byte) inbound {
	in := inbound{client: c}

	ev, err := protocol.Decode(frame)
	if err != nil {
		var decErr *protocol.DecodeError
		if errors.As(err, &decErr) {
			in.name = decErr.Event
		}
		in.err = err
		return in
	}
	in.name = ev.Name()

	if c.limiter != nil && !c.limiter.Allow() {
		metrics.RecordDrop(metrics.DropRateLimited)
		in.err = fmt.Errorf("%s: %w", in.name, protocol.ErrRateLimited)
		return in
	}

	in.event = ev
	return in
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug().Err(err).Msg("failed to write websocket frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
