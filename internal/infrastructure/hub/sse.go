package hub

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-contrib/sse"

	"go-user-notify/internal/infrastructure/logger"
)

// SSEConnection implements the Connection interface over Server-Sent Events.
// Same contract as the WebSocket variant: a bounded queue drained by a single
// write pump, drop-on-full backpressure.
type SSEConnection struct {
	id      string
	writer  http.ResponseWriter
	flusher http.Flusher

	ctx    context.Context
	cancel context.CancelFunc

	state atomic.Int32

	send chan []byte
	done chan struct{}

	closeOnce sync.Once

	logger logger.Logger
}

// NewSSEConnection creates a new SSE connection bound to the request
// lifetime and starts its write pump.
func NewSSEConnection(
	parent context.Context,
	id string,
	w http.ResponseWriter,
	queueSize int,
	log logger.Logger,
) *SSEConnection {
	if queueSize <= 0 {
		queueSize = DefaultSendQueueSize
	}

	ctx, cancel := context.WithCancel(parent)

	flusher, _ := w.(http.Flusher)

	c := &SSEConnection{
		id:      id,
		writer:  w,
		flusher: flusher,
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan []byte, queueSize),
		done:    make(chan struct{}),
		logger:  log.WithField("connection_id", id),
	}
	c.state.Store(int32(StateActive))

	c.setupHeaders()

	go c.writePump()

	return c
}

func (c *SSEConnection) ID() string   { return c.id }
func (c *SSEConnection) Type() string { return "sse" }

func (c *SSEConnection) State() State {
	return State(c.state.Load())
}

func (c *SSEConnection) Context() context.Context {
	return c.ctx
}

// Enqueue appends payload to the outbound queue without blocking.
func (c *SSEConnection) Enqueue(payload []byte) error {
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

// Close marks the connection closed and cancels the stream context. The
// write pump exits on its own; Done reports when it has released the writer.
func (c *SSEConnection) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.cancel()
		c.logger.Info("SSE connection closed")
	})
	return nil
}

// Done is closed once the write pump has exited. The HTTP handler must not
// hand the response writer back to the server before then.
func (c *SSEConnection) Done() <-chan struct{} {
	return c.done
}

func (c *SSEConnection) markClosing() {
	if c.state.CompareAndSwap(int32(StateActive), int32(StateClosing)) {
		c.cancel()
	}
}

func (c *SSEConnection) setupHeaders() {
	h := c.writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // For nginx
}

func (c *SSEConnection) writePump() {
	defer close(c.done)

	for {
		select {
		case payload := <-c.send:
			err := sse.Encode(c.writer, sse.Event{
				Event: "notification",
				Data:  string(payload),
			})
			if err != nil {
				c.logger.Errorf("Failed to write event: %v", err)
				c.markClosing()
				return
			}
			if c.flusher != nil {
				c.flusher.Flush()
			}

		case <-c.ctx.Done():
			return
		}
	}
}
