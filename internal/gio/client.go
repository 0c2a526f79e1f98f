// Package gio plays on generals.io over its socket.io websocket.
package gio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned when emitting on a closed connection.
var ErrClosed = errors.New("gio: connection closed")

const pingInterval = 5 * time.Second

// ServerURL resolves a server name to its websocket endpoint. "na" and "eu"
// are the public servers; anything starting with ws:// or wss:// is used
// as is.
func ServerURL(server string) string {
	switch {
	case strings.HasPrefix(server, "ws://"), strings.HasPrefix(server, "wss://"):
		return server
	case server == "eu":
		return "wss://euws.generals.io/socket.io/?EIO=3&transport=websocket"
	default:
		return "wss://ws.generals.io/socket.io/?EIO=3&transport=websocket"
	}
}

// Client is a socket.io client speaking the EIO=3 framing used by the game
// server. Event handlers run on the read goroutine.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	handlers map[string]func(args []json.RawMessage)

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the given server name or websocket URL.
func Dial(ctx context.Context, server string) (*Client, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout:  10 * time.Second,
		EnableCompression: true,
	}
	url := ServerURL(server)
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws dial %s: %w", url, err)
	}
	log.Debug().Str("url", url).Msg("Connected to game server")
	return &Client{
		conn:     conn,
		send:     make(chan []byte, 16),
		handlers: make(map[string]func([]json.RawMessage)),
		done:     make(chan struct{}),
	}, nil
}

// On registers the handler for an event, replacing any previous one.
func (c *Client) On(event string, fn func(args []json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = fn
}

// Emit queues an event for the writer.
func (c *Client) Emit(event string, args ...any) error {
	frame, err := encodeFrame(event, args...)
	if err != nil {
		return err
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

// Run reads and dispatches events until the connection drops or ctx is
// cancelled. It also owns the writer and the keepalive ping.
func (c *Client) Run(ctx context.Context) error {
	defer c.shutdown()
	go c.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ws read: %w", err)
		}
		event, args, ok := decodeFrame(msg)
		if !ok {
			continue
		}
		c.mu.Lock()
		h := c.handlers[event]
		c.mu.Unlock()
		if h == nil {
			log.Trace().Str("event", event).Msg("Unhandled event")
			continue
		}
		h(args)
	}
}

// Close sends a close frame and drops the connection.
func (c *Client) Close() {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.shutdown()
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		var frame []byte
		select {
		case <-c.done:
			return
		case <-ping.C:
			frame = []byte("2")
		case frame = <-c.send:
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Debug().Err(err).Msg("WS write error")
			c.shutdown()
			return
		}
	}
}

// encodeFrame builds a socket.io event packet: 42["event",args...].
func encodeFrame(event string, args ...any) ([]byte, error) {
	payload, err := json.Marshal(append([]any{event}, args...))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return append([]byte("42"), payload...), nil
}

// decodeFrame splits a socket.io event packet into its name and arguments.
// Other engine.io packets (open, pong, connect) are reported as not ok.
func decodeFrame(msg []byte) (string, []json.RawMessage, bool) {
	if !bytes.HasPrefix(msg, []byte("42")) {
		return "", nil, false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(msg[2:], &parts); err != nil || len(parts) == 0 {
		return "", nil, false
	}
	var event string
	if err := json.Unmarshal(parts[0], &event); err != nil {
		return "", nil, false
	}
	return event, parts[1:], true
}
