package notification

import (
	"context"
	"encoding/json"

	"go-user-notify/internal/domain/model"
	"go-user-notify/internal/infrastructure/logger"
)

// Publisher sends one serialized notification to the shared channel.
// Satisfied by the bus bridge.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// EventStore persists the audit record of a notification.
type EventStore interface {
	StoreUserEvent(ctx context.Context, n *Notification) error
}

// Producer is the synchronous call the CRUD layer makes at the moment of a
// state change. Every failure on this path is logged and swallowed: the data
// mutation is authoritative, the notification is a best-effort side channel.
// The producer never touches the connection registry directly; local clients
// receive the event back through the bus like everyone else.
type Producer struct {
	publisher Publisher
	events    EventStore
	logger    logger.Logger
}

func NewProducer(publisher Publisher, events EventStore, log logger.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		events:    events,
		logger:    log.WithField("component", "notification_producer"),
	}
}

func (p *Producer) NotifyUserCreated(ctx context.Context, user model.User) {
	p.send(ctx, NewUserCreated(user))
}

// NotifyUserDeleted carries the snapshot fetched before deletion, so the
// payload still references the removed user.
func (p *Producer) NotifyUserDeleted(ctx context.Context, user model.User) {
	p.send(ctx, NewUserDeleted(user))
}

func (p *Producer) NotifyMessage(ctx context.Context, sender, text string) {
	p.send(ctx, NewChatMessage(sender, text))
}

// send stores the audit record, serializes the notification exactly once,
// and publishes the bytes to the shared channel.
func (p *Producer) send(ctx context.Context, n *Notification) {
	if p.events != nil {
		if err := p.events.StoreUserEvent(ctx, n); err != nil {
			p.logger.Errorf("Failed to store %s event %s: %v", n.EventType, n.ID, err)
		}
	}

	payload, err := json.Marshal(n)
	if err != nil {
		p.logger.Errorf("Failed to encode %s event %s: %v", n.EventType, n.ID, err)
		return
	}

	if err := p.publisher.Publish(ctx, payload); err != nil {
		p.logger.Errorf("Failed to publish %s event %s: %v", n.EventType, n.ID, err)
		return
	}

	p.logger.Debugf("Published %s event %s", n.EventType, n.ID)
}
