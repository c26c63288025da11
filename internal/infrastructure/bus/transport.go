package bus

import "context"

// DefaultTopic is the fixed pub/sub channel every server process shares.
const DefaultTopic = "user_notifications"

// Transport abstracts the shared pub/sub channel. The production
// implementation is Redis; tests substitute an in-memory fake.
type Transport interface {
	// Publish sends payload to every current subscriber of topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe opens a live subscription to topic. The returned
	// subscription's message channel closes when the transport link is
	// lost or the subscription is closed.
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is one live link to the shared channel.
type Subscription interface {
	// Messages yields inbound payloads in channel order. The channel is
	// closed on transport loss.
	Messages() <-chan []byte

	Close() error
}
