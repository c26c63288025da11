package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"go-user-notify/internal/infrastructure/logger"
)

const (
	// DefaultSendQueueSize bounds each connection's outbound queue. When the
	// queue is full the connection is dropped, not the broadcast.
	DefaultSendQueueSize = 64

	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second // less than pong timeout
)

// WebSocketConnection implements the Connection interface over a gorilla
// WebSocket. Outbound payloads go through a bounded FIFO channel consumed by
// a single write pump, so callers never block on the socket.
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	state atomic.Int32

	send chan []byte

	closeOnce sync.Once

	logger logger.Logger
}

// NewWebSocketConnection creates a new WebSocket connection and starts its
// read and write pumps. queueSize <= 0 falls back to DefaultSendQueueSize.
func NewWebSocketConnection(
	id string,
	conn *websocket.Conn,
	queueSize int,
	log logger.Logger,
) *WebSocketConnection {
	if queueSize <= 0 {
		queueSize = DefaultSendQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &WebSocketConnection{
		id:     id,
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, queueSize),
		logger: log.WithField("connection_id", id),
	}
	c.state.Store(int32(StateActive))

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	go c.writePump()
	go c.readPump()

	return c
}

func (c *WebSocketConnection) ID() string   { return c.id }
func (c *WebSocketConnection) Type() string { return "websocket" }

func (c *WebSocketConnection) State() State {
	return State(c.state.Load())
}

func (c *WebSocketConnection) Context() context.Context {
	return c.ctx
}

// Enqueue appends payload to the outbound queue without blocking. A full
// queue marks the connection Closing and returns ErrSendQueueFull.
func (c *WebSocketConnection) Enqueue(payload []byte) error {
	if c.State() != StateActive {
		return ErrConnectionClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.markClosing()
		return ErrSendQueueFull
	}
}

// Close marks the connection closed and cancels its context. The socket
// itself is released by the write pump, which is the only goroutine allowed
// to write; it sends the close frame on its way out. Safe to call more than
// once and from any goroutine.
func (c *WebSocketConnection) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.cancel()

		c.logger.Info("WebSocket connection closed")
	})
	return nil
}

// markClosing moves an active connection into the Closing state and cancels
// its context, which makes the registry unregister and close it.
func (c *WebSocketConnection) markClosing() {
	if c.state.CompareAndSwap(int32(StateActive), int32(StateClosing)) {
		c.cancel()
	}
}

// writePump is the only goroutine writing to the socket. Payloads leave the
// queue in FIFO order; a ping keeps the peer's read deadline alive. On
// context cancellation it sends the close frame before releasing the socket,
// so no other goroutine ever touches the writer.
func (c *WebSocketConnection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Errorf("Failed to write message: %v", err)
				c.markClosing()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("Failed to send ping: %v", err)
				c.markClosing()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return
		}
	}
}

// readPump consumes inbound frames. Client payloads are not part of the
// notification path; the pump exists to notice peer-initiated closes and to
// keep pong handling running.
func (c *WebSocketConnection) readPump() {
	defer c.markClosing()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("WebSocket read error: %v", err)
			}
			return
		}
	}
}
