package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisTransport implements Transport on top of Redis pub/sub. One client
// serves both directions; publish and subscribe are lightweight, long-lived
// operations, so no pooling beyond the client's own is needed.
type RedisTransport struct {
	client *redis.Client
}

var _ Transport = (*RedisTransport)(nil)

func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

func (t *RedisTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	return t.client.Publish(ctx, topic, payload).Err()
}

func (t *RedisTransport) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := t.client.Subscribe(ctx, topic)

	// Confirm the subscription before declaring the link up.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	sub := &redisSubscription{
		pubsub:   pubsub,
		messages: make(chan []byte),
		quit:     make(chan struct{}),
	}
	go sub.pump()

	return sub, nil
}

type redisSubscription struct {
	pubsub   *redis.PubSub
	messages chan []byte
	quit     chan struct{}

	closeOnce sync.Once
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.messages
}

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })
	return s.pubsub.Close()
}

// pump forwards inbound messages until the client channel closes, which
// go-redis does on connection loss or Close.
func (s *redisSubscription) pump() {
	defer close(s.messages)
	forwardPayloads(s.pubsub.Channel(), s.messages, s.quit)
}

// forwardPayloads relays messages into out. The quit signal unblocks an
// in-flight send whose consumer has already gone away.
func forwardPayloads(in <-chan *redis.Message, out chan<- []byte, quit <-chan struct{}) {
	for msg := range in {
		select {
		case out <- []byte(msg.Payload):
		case <-quit:
			return
		}
	}
}
