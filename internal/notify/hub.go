// Package notify fans notifications out to live WebSocket connections.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// Conn is the write side of a WebSocket connection.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Event is the envelope pushed to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	conn Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// Hub tracks the open connections of every user. It is safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*client]struct{}
	log   zerolog.Logger

	buffer       int
	writeTimeout time.Duration
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		users:        make(map[string]map[*client]struct{}),
		log:          log.With().Str("component", "notify").Logger(),
		buffer:       sendBuffer,
		writeTimeout: writeTimeout,
	}
}

// Register adds conn for userID and returns the function that removes it.
func (h *Hub) Register(userID string, conn Conn) func() {
	c := &client{
		conn: conn,
		send: make(chan Event, h.buffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.users[userID]
	if !ok {
		set = make(map[*client]struct{})
		h.users[userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(userID, c)
	h.log.Debug().Str("user_id", userID).Msg("websocket registered")

	return func() {
		h.remove(userID, c)
		c.stop()
	}
}

func (h *Hub) writeLoop(userID string, c *client) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				h.log.Debug().Err(err).Str("user_id", userID).Msg("websocket write failed")
				h.drop(userID, c)
				return
			}
		}
	}
}

func (h *Hub) remove(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.users[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.users, userID)
	}
}

func (h *Hub) drop(userID string, c *client) {
	h.remove(userID, c)
	c.stop()
	_ = c.conn.Close()
}

// Push queues an event for every connection of userID and returns how many
// accepted it. It never waits for the network: a connection whose queue is
// full is closed and dropped.
func (h *Hub) Push(userID, eventType string, data any) int {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	ev := Event{Type: eventType, Data: data}
	queued := 0
	for _, c := range clients {
		select {
		case <-c.done:
			continue
		default:
		}
		select {
		case c.send <- ev:
			queued++
		default:
			h.log.Warn().Str("user_id", userID).Msg("websocket send queue full, dropping connection")
			h.drop(userID, c)
		}
	}
	return queued
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close closes every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	users := h.users
	h.users = make(map[string]map[*client]struct{})
	h.mu.Unlock()

	for _, set := range users {
		for c := range set {
			c.stop()
			_ = c.conn.Close()
		}
	}
}
