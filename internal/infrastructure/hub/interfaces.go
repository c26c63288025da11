package hub

import (
	"context"
	"errors"
)

// State is the lifecycle of a connection. Transitions only move forward:
// Active -> Closing -> Closed.
type State int32

const (
	StateActive State = iota
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	// ErrDuplicateConnection is returned when the same connection id is
	// registered twice. The older entry wins.
	ErrDuplicateConnection = errors.New("hub: duplicate connection")

	// ErrSendQueueFull is returned when a connection's bounded outbound
	// queue cannot accept another payload.
	ErrSendQueueFull = errors.New("hub: send queue full")

	// ErrConnectionClosed is returned when enqueuing on a connection that
	// is no longer active.
	ErrConnectionClosed = errors.New("hub: connection closed")
)

// Connection represents one delivery channel to a client (WebSocket, SSE).
// Enqueue must never block: a full queue is an error, not a wait.
type Connection interface {
	ID() string
	Type() string
	Enqueue(payload []byte) error
	Close() error
	State() State
	Context() context.Context
}
