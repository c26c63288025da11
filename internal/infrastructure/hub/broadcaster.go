package hub

import (
	"errors"

	"go-user-notify/internal/infrastructure/logger"
)

// Broadcaster fans one serialized payload out to every registered
// connection. The payload arrives already encoded; every connection gets the
// same bytes, so the wire representation is produced exactly once upstream.
type Broadcaster struct {
	registry *Registry
	logger   logger.Logger
}

func NewBroadcaster(registry *Registry, log logger.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   log.WithField("component", "broadcaster"),
	}
}

// Broadcast enqueues payload on every connection in the current registry
// snapshot. A connection that cannot accept the payload (full queue, already
// closing) is unregistered; the rest of the fan-out is unaffected.
func (b *Broadcaster) Broadcast(payload []byte) {
	delivered := 0
	dropped := 0

	b.registry.ForEach(func(conn Connection) {
		if err := conn.Enqueue(payload); err != nil {
			dropped++
			if errors.Is(err, ErrSendQueueFull) {
				b.logger.Warnf("Connection %s dropped: outbound queue full", conn.ID())
			}
			b.registry.Unregister(conn.ID())
			return
		}
		delivered++
	})

	if dropped > 0 {
		b.logger.Warnf("Broadcast delivered to %d connections, dropped %d", delivered, dropped)
	} else {
		b.logger.Debugf("Broadcast delivered to %d connections", delivered)
	}
}
