package handler

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/taobot/internal/logger"
	"github.com/freeeve/taobot/pkg/generals"
)

// Event types sent over WebSocket.
const (
	EventConnected = "connected"
	EventFrame     = "frame"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Data    any    `json:"data"`
}

// ClientMessage is the envelope for messages sent by a viewer.
type ClientMessage struct {
	Action  string `json:"action"` // "subscribe" or "unsubscribe"
	MatchID string `json:"match_id"`
}

// WSConn wraps a viewer's WebSocket connection.
type WSConn struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks viewers and the matches they watch. It also remembers the
// latest frame of every match so late viewers start with a full board.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	matches     map[string]map[*WSConn]bool // matchID -> set of connections
	latest      map[string]*generals.Frame
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		matches:     make(map[string]map[*WSConn]bool),
		latest:      make(map[string]*generals.Frame),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	for matchID, conns := range h.matches {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.matches, matchID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a match channel and replays the latest
// frame to it.
func (h *Hub) Subscribe(c *WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	if h.matches[matchID] == nil {
		h.matches[matchID] = make(map[*WSConn]bool)
	}
	h.matches[matchID][c] = true
	if f := h.latest[matchID]; f != nil {
		if data, err := json.Marshal(WSEvent{Type: EventFrame, MatchID: matchID, Data: f}); err == nil {
			trySend(c, data)
		}
	}
}

// Unsubscribe removes a connection from a match channel.
func (h *Hub) Unsubscribe(c *WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.matches[matchID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.matches, matchID)
		}
	}
}

// Publish records the grid as the match's latest frame and broadcasts it.
// It is a bot.FrameSink; the match comes from ctx.
func (h *Hub) Publish(ctx context.Context, g *generals.Grid) error {
	matchID := logger.MatchFromContext(ctx)
	f := g.Frame(matchID)
	h.mu.Lock()
	h.latest[matchID] = f
	h.mu.Unlock()
	h.BroadcastToMatch(matchID, WSEvent{Type: EventFrame, MatchID: matchID, Data: f})
	return nil
}

// Latest returns the last frame published for a match.
func (h *Hub) Latest(matchID string) (*generals.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.latest[matchID]
	return f, ok
}

// BroadcastToMatch sends an event to all connections watching a match.
// Slow viewers drop messages rather than stall the bot.
func (h *Hub) BroadcastToMatch(matchID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("match", matchID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.matches[matchID] {
		if !trySend(c, data) {
			log.Warn().Str("match", matchID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

func trySend(c *WSConn, data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// MatchSubscriberCount returns the number of connections watching a match.
func (h *Hub) MatchSubscriberCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}
