package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/motion"
)

// ControllerLookup resolves controller keys sent by clients.
type ControllerLookup interface {
	Lookup(key string) *motion.Controller
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu         sync.RWMutex
	controller string // key this client listens to; empty means all
	closed     bool
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// SetController restricts the client to one controller key.
func (c *Client) SetController(key string) {
	c.mu.Lock()
	c.controller = key
	c.mu.Unlock()
}

// trySend queues data unless the buffer is full or the hub already closed
// the client. It reports whether data was queued.
func (c *Client) trySend(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close is called by the hub exactly once per registered client.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) follows(controller string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controller == "" || controller == "" || c.controller == controller
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPumpWithHandler(lookup ControllerLookup) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handle(message, lookup)
	}
}

func (c *Client) handle(message []byte, lookup ControllerLookup) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(message, &clientMsg); err != nil {
		c.hub.log.Warn("bad client message", zap.Error(err))
		return
	}

	switch clientMsg.Type {
	case "select_controller":
		if clientMsg.Controller != "" && lookup.Lookup(clientMsg.Controller) == nil {
			c.hub.log.Warn("unknown controller requested", zap.String("controller", clientMsg.Controller))
			return
		}
		c.SetController(clientMsg.Controller)
		data, err := json.Marshal(NewControllerSelectedMessage(clientMsg.Controller))
		if err != nil {
			return
		}
		if !c.trySend(data) {
			return
		}
		c.hub.log.Info("client switched controller", zap.String("controller", clientMsg.Controller))
	}
}
