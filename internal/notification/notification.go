package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-user-notify/internal/domain/model"
)

// EventType enumerates the notification kinds carried over the bus.
type EventType string

const (
	EventUserCreated EventType = "user_created"
	EventUserDeleted EventType = "user_deleted"
	EventMessage     EventType = "message"
)

// Notification is the immutable wire value for one event. The same JSON is
// published to the shared channel and delivered to clients unchanged.
type Notification struct {
	ID        string      `json:"id"`
	EventType EventType   `json:"event_type"`
	UserData  *model.User `json:"user_data,omitempty"`
	User      string      `json:"user,omitempty"` // sender, chat messages only
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
}

func NewUserCreated(user model.User) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		EventType: EventUserCreated,
		UserData:  &user,
		Message:   fmt.Sprintf("Nouvel utilisateur créé: %s (%s)", user.Name, user.Email),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func NewUserDeleted(user model.User) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		EventType: EventUserDeleted,
		UserData:  &user,
		Message:   fmt.Sprintf("Utilisateur supprimé: %s (%s)", user.Name, user.Email),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func NewChatMessage(sender, text string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		EventType: EventMessage,
		User:      sender,
		Message:   text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
