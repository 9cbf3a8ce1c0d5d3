// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/syncroom/syncroom/internal/logging"
	"github.com/syncroom/syncroom/internal/metrics"
	"github.com/syncroom/syncroom/internal/protocol"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Handler consumes inbound traffic. The hub calls it from its own goroutine
// only, one call at a time.
type Handler interface {
	Dispatch(connID string, ev protocol.Event)
	Reject(connID, event string, err error)
	Disconnect(connID string)
}

// Config holds per-connection limits.
type Config struct {
	// SendBuffer is the outbound queue length; a client that fills it is dropped.
	SendBuffer int

	// MaxMessageSize is the largest inbound frame accepted, in bytes.
	MaxMessageSize int64

	// InboundRate limits frames per second per connection; zero disables.
	InboundRate  float64
	InboundBurst int
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		SendBuffer:     256,
		MaxMessageSize: 512 * 1024,
		InboundBurst:   50,
	}
}

// inbound is one decoded frame, or the reason it could not be dispatched.
// A closed entry is the last one a client queues; it is handled only after
// every frame the client queued before it.
type inbound struct {
	client *Client
	event  protocol.Event
	name   string
	err    error
	closed bool
}

// Hub is the Connection Gateway and Group Broadcaster. It owns the client
// registry and group membership, and serializes inbound events through a
// single goroutine (RunWithContext) that calls the Handler.
type Hub struct {
	cfg     Config
	handler Handler

	clients map[string]*Client
	groups  map[string]map[string]*Client
	// dropped holds ids of slow consumers removed during the current event;
	// they are handed to Handler.Disconnect once the event completes.
	dropped []string
	mu      sync.RWMutex

	Register chan *Client
	inbound  chan inbound

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub. SetHandler must be called before RunWithContext.
func NewHub(cfg Config) *Hub {
	def := DefaultConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.InboundBurst <= 0 {
		cfg.InboundBurst = def.InboundBurst
	}

	return &Hub{
		cfg:      cfg,
		clients:  make(map[string]*Client),
		groups:   make(map[string]map[string]*Client),
		Register: make(chan *Client),
		inbound:  make(chan inbound, 1024),
		done:     make(chan struct{}),
	}
}

// SetHandler installs the inbound event consumer.
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// RunWithContext runs the hub loop until ctx is canceled.
// This method is designed for use with suture supervision.
//
// DETERMINISM: Uses priority-based selection:
//   - Priority 1: Context cancellation (shutdown)
//   - Priority 2: Registration
//   - Priority 3: Inbound queue (events and disconnects)
//
// Disconnects travel on the inbound queue, so a client's frames are always
// dispatched before its own disconnect. Registration jumping ahead is safe:
// a client queues nothing until it is registered.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.register(client)

		case in := <-h.inbound:
			h.dispatch(in)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.TrackConnection(true)
	c.logger.Debug().Int("total_clients", total).Msg("websocket client connected")
}

// unregister removes the client if it is still registered and always runs
// disconnect handling, which is idempotent.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.id]; ok && current == c {
		h.removeLocked(c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.disconnect(c.id)
	h.flushDropped()
	c.logger.Debug().Int("total_clients", total).Msg("websocket client disconnected")
}

// dispatch handles one queue entry. Frames from a client that is no longer
// registered (dropped as a slow consumer) are discarded: its disconnect
// handling has already run.
func (h *Hub) dispatch(in inbound) {
	if in.closed {
		h.unregister(in.client)
		return
	}

	h.mu.RLock()
	current, ok := h.clients[in.client.id]
	h.mu.RUnlock()
	if !ok || current != in.client {
		return
	}

	if h.handler != nil {
		if in.err != nil {
			h.handler.Reject(in.client.id, in.name, in.err)
		} else {
			h.handler.Dispatch(in.client.id, in.event)
		}
	}
	h.flushDropped()
}

func (h *Hub) disconnect(connID string) {
	if h.handler != nil {
		h.handler.Disconnect(connID)
	}
}

// flushDropped runs disconnect handling for slow consumers. Disconnect may
// broadcast and drop further clients, so it loops until the queue is empty.
func (h *Hub) flushDropped() {
	for {
		h.mu.Lock()
		if len(h.dropped) == 0 {
			h.mu.Unlock()
			return
		}
		id := h.dropped[0]
		h.dropped = h.dropped[1:]
		h.mu.Unlock()

		h.disconnect(id)
	}
}

// removeLocked forgets a client and closes its send channel, which makes the
// write pump close the connection. Callers hold h.mu.
func (h *Hub) removeLocked(c *Client) {
	delete(h.clients, c.id)
	for group := range c.groups {
		members := h.groups[group]
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	c.groups = nil
	close(c.send)
	metrics.TrackConnection(false)
}

// deliverLocked queues frame for c, dropping c if its buffer is full.
// Callers hold h.mu.
func (h *Hub) deliverLocked(c *Client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("buffer", cap(c.send)).Msg("send buffer full, dropping slow websocket client")
		metrics.RecordDrop(metrics.DropSlowConsumer)
		h.removeLocked(c)
		h.dropped = append(h.dropped, c.id)
		return false
	}
}

// Send queues frame for a single connection. Unknown ids are ignored.
func (h *Hub) Send(connID string, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if h.deliverLocked(c, frame) {
		metrics.RelayMessagesSent.Inc()
	}
}

// JoinGroup subscribes a connection to a group.
func (h *Hub) JoinGroup(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[connID] = c
	c.groups[group] = struct{}{}
}

// LeaveGroup unsubscribes a connection from a group.
func (h *Hub) LeaveGroup(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
	if c, ok := h.clients[connID]; ok {
		delete(c.groups, group)
	}
}

// Emit queues frame for every member of group.
func (h *Hub) Emit(group string, frame []byte) int {
	return h.EmitExcept(group, "", frame)
}

// EmitExcept queues frame for every member of group other than except.
// DETERMINISM: members are visited in connection order.
func (h *Hub) EmitExcept(group, except string, frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := make([]*Client, 0, len(h.groups[group]))
	for _, c := range h.groups[group] {
		if c.id != except {
			members = append(members, c)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].seq < members[j].seq
	})

	n := 0
	for _, c := range members {
		if h.deliverLocked(c, frame) {
			n++
		}
	}
	metrics.RecordBroadcast(n)
	return n
}

// Attach hands a new client to the hub loop. It returns false if the hub has
// shut down.
func (h *Hub) Attach(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// detach queues c's disconnect behind the frames it has already queued.
func (h *Hub) detach(c *Client) {
	h.enqueue(inbound{client: c, closed: true})
}

func (h *Hub) enqueue(in inbound) bool {
	select {
	case h.inbound <- in:
		return true
	case <-h.done:
		return false
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of connections subscribed to group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// logGracefulShutdown closes every client and logs the shutdown.
// ctx.Err() is not logged as an error: cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()

	h.stopOnce.Do(func() { close(h.done) })
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every client in connection order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].seq < clients[j].seq
	})

	for _, c := range clients {
		h.removeLocked(c)
	}
	h.dropped = nil
}
