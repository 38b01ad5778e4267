package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/spatialsync/arboard/internal/core/observability/log"
)

const sendQueueSize = 16

// client wraps one viewer connection: a buffered outbound queue drained by
// writePump, and a readPump turning inbound messages into gestures. Slow
// viewers have frames dropped rather than stalling the broadcast.
type client struct {
	id     string
	conn   *websocket.Conn
	server *Server
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, s *Server) *client {
	return &client{
		id:     uuid.New().String(),
		conn:   conn,
		server: s,
		send:   make(chan []byte, sendQueueSize),
	}
}

// enqueue queues data for delivery, dropping it when the queue is full or
// the client is already closed.
func (c *client) enqueue(data []byte) {
	if data == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.server.logger.Debug("dropping frame for slow viewer", log.String("client", c.id))
	}
}

func (c *client) writePump() {
	for data := range c.send {
		if timeout := c.server.cfg.WriteTimeout.Std(); timeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (c *client) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := decodeGesture(data)
		if err != nil {
			c.server.logger.Warn("bad gesture message",
				log.String("client", c.id), log.Error(err))
			continue
		}
		applied := c.server.applyGesture(msg)
		c.server.logger.Debug("gesture",
			log.String("client", c.id),
			log.String("kind", msg.Kind),
			log.Bool("applied", applied))
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}
