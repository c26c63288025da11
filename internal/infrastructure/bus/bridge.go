package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"go-user-notify/internal/infrastructure/logger"
	"go-user-notify/internal/notification"
)

// ErrBusUnavailable reports that the shared channel cannot accept a publish
// right now. Callers log and move on; nothing is buffered or retried.
var ErrBusUnavailable = errors.New("bus: unavailable")

const (
	reconnectInitialInterval = 250 * time.Millisecond
	reconnectMaxInterval     = 5 * time.Second
)

// LocalBroadcaster receives every payload the bridge pulls off the shared
// channel.
type LocalBroadcaster interface {
	Broadcast(payload []byte)
}

// Bridge connects the local broadcaster to the shared pub/sub channel.
// Publishes go out under a fixed topic; the subscription loop feeds inbound
// messages back into the broadcaster, so local and remote clients receive
// notifications through the same path. The bridge holds exactly one
// subscription per process.
type Bridge struct {
	transport Transport
	local     LocalBroadcaster
	topic     string
	logger    logger.Logger

	connected atomic.Bool
	malformed atomic.Uint64
}

func NewBridge(transport Transport, local LocalBroadcaster, log logger.Logger) *Bridge {
	return &Bridge{
		transport: transport,
		local:     local,
		topic:     DefaultTopic,
		logger:    log.WithField("component", "bus_bridge"),
	}
}

// Publish sends an already-serialized notification to the shared channel.
// While the subscription link is down it fails fast with ErrBusUnavailable;
// at-most-once, best-effort semantics.
func (b *Bridge) Publish(ctx context.Context, payload []byte) error {
	if !b.connected.Load() {
		return ErrBusUnavailable
	}

	if err := b.transport.Publish(ctx, b.topic, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	}

	return nil
}

// Start establishes the initial subscription and launches the receive loop.
// A failure here is fatal to process startup; afterwards the bridge
// reconnects on its own.
func (b *Bridge) Start(ctx context.Context) error {
	sub, err := b.transport.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("initial bus subscription: %w", err)
	}
	b.connected.Store(true)
	b.logger.Infof("Subscribed to topic %s", b.topic)

	go b.run(ctx, sub)

	return nil
}

// Connected reports whether the subscription link is currently up.
func (b *Bridge) Connected() bool {
	return b.connected.Load()
}

// MalformedCount returns how many undecodable bus messages were discarded.
func (b *Bridge) MalformedCount() uint64 {
	return b.malformed.Load()
}

func (b *Bridge) run(ctx context.Context, sub Subscription) {
	for {
		b.consume(ctx, sub)

		b.connected.Store(false)
		sub.Close()

		if ctx.Err() != nil {
			b.logger.Info("Bus bridge stopped")
			return
		}

		b.logger.Warn("Bus subscription lost, reconnecting")
		next := b.reconnect(ctx)
		if next == nil {
			b.logger.Info("Bus bridge stopped")
			return
		}

		sub = next
		b.connected.Store(true)
		b.logger.Infof("Resubscribed to topic %s", b.topic)
	}
}

// consume pumps inbound messages into the local broadcaster until the
// subscription dies or the context is cancelled. Malformed messages are
// counted and skipped; the received bytes are handed on verbatim.
func (b *Bridge) consume(ctx context.Context, sub Subscription) {
	for {
		select {
		case <-ctx.Done():
			return

		case payload, ok := <-sub.Messages():
			if !ok {
				return
			}

			var n notification.Notification
			if err := json.Unmarshal(payload, &n); err != nil || n.EventType == "" {
				b.malformed.Add(1)
				b.logger.Warnf("Discarding malformed bus message (%d total): %v", b.malformed.Load(), err)
				continue
			}

			b.local.Broadcast(payload)
		}
	}
}

// reconnect retries the subscription with exponential backoff, indefinitely,
// until the context is cancelled. Returns nil only on cancellation.
func (b *Bridge) reconnect(ctx context.Context) Subscription {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = reconnectInitialInterval
	policy.MaxInterval = reconnectMaxInterval
	policy.MaxElapsedTime = 0 // retry until cancelled

	var sub Subscription
	operation := func() error {
		s, err := b.transport.Subscribe(ctx, b.topic)
		if err != nil {
			return err
		}
		sub = s
		return nil
	}

	notify := func(err error, next time.Duration) {
		b.logger.Warnf("Bus reconnect failed: %v (next attempt in %s)", err, next)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil
	}

	return sub
}
