package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-user-notify/internal/notification"
)

// EventRepository writes the audit record of every notification. The record
// is never read back on the broadcast path.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) StoreUserEvent(ctx context.Context, n *notification.Notification) error {
	var userID *int32
	var userData []byte
	if n.UserData != nil {
		userID = &n.UserData.ID
		data, err := json.Marshal(n.UserData)
		if err != nil {
			return fmt.Errorf("encode user data: %w", err)
		}
		userData = data
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_events (event_type, user_id, user_data, message)
		 VALUES ($1, $2, $3, $4)`,
		string(n.EventType), userID, userData, n.Message)
	if err != nil {
		return fmt.Errorf("insert user event: %w", err)
	}

	return nil
}
