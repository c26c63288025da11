package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-notify/internal/domain/model"
)

func TestNewUserCreated(t *testing.T) {
	user := model.User{ID: 42, Name: "Alice", Email: "alice@example.com"}

	n := NewUserCreated(user)

	assert.Equal(t, EventUserCreated, n.EventType)
	assert.Equal(t, "Nouvel utilisateur créé: Alice (alice@example.com)", n.Message)
	require.NotNil(t, n.UserData)
	assert.Equal(t, int32(42), n.UserData.ID)
	assert.Empty(t, n.User)

	_, err := uuid.Parse(n.ID)
	assert.NoError(t, err)

	_, err = time.Parse(time.RFC3339, n.Timestamp)
	assert.NoError(t, err)
}

func TestNewUserDeleted(t *testing.T) {
	user := model.User{ID: 42, Name: "Bob", Email: "bob@example.com"}

	n := NewUserDeleted(user)

	assert.Equal(t, EventUserDeleted, n.EventType)
	assert.Equal(t, "Utilisateur supprimé: Bob (bob@example.com)", n.Message)
	require.NotNil(t, n.UserData)
	assert.Equal(t, "bob@example.com", n.UserData.Email)
}

func TestNewChatMessage(t *testing.T) {
	n := NewChatMessage("carol", "bonjour")

	assert.Equal(t, EventMessage, n.EventType)
	assert.Equal(t, "carol", n.User)
	assert.Equal(t, "bonjour", n.Message)
	assert.Nil(t, n.UserData)
}

func TestNotification_WireFormat(t *testing.T) {
	user := model.User{ID: 7, Name: "Dave", Email: "dave@example.com", PasswordHash: "secret"}
	n := NewUserCreated(user)

	payload, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Contains(t, decoded, "id")
	assert.Equal(t, "user_created", decoded["event_type"])
	assert.Contains(t, decoded, "user_data")
	assert.Contains(t, decoded, "message")
	assert.Contains(t, decoded, "timestamp")

	// Chat-only field stays off the wire for user events.
	assert.NotContains(t, decoded, "user")

	// The password hash never leaves the process.
	assert.NotContains(t, string(payload), "secret")
}
