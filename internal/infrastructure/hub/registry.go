package hub

import (
	"sync"

	"go-user-notify/internal/infrastructure/logger"
)

// Registry tracks the live connections of this process. It owns every entry:
// nothing else keeps a reference past Unregister. The registry itself never
// touches the network.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]Connection

	logger logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		connections: make(map[string]Connection),
		logger:      log.WithField("component", "registry"),
	}
}

// Register inserts a new active connection. A second registration under the
// same id is rejected with ErrDuplicateConnection and the older entry is
// kept. The entry is removed automatically once the connection's context is
// done.
func (r *Registry) Register(conn Connection) error {
	r.mu.Lock()
	if _, exists := r.connections[conn.ID()]; exists {
		r.mu.Unlock()
		return ErrDuplicateConnection
	}
	r.connections[conn.ID()] = conn
	r.mu.Unlock()

	r.logger.Infof("Connection %s registered (type: %s)", conn.ID(), conn.Type())

	// Monitor connection context for disconnection
	go func() {
		<-conn.Context().Done()
		r.Unregister(conn.ID())
	}()

	return nil
}

// Unregister removes the entry and closes the connection. Unregistering an
// absent id is a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	conn, exists := r.connections[connID]
	if exists {
		delete(r.connections, connID)
	}
	r.mu.Unlock()

	if exists {
		if err := conn.Close(); err != nil {
			r.logger.Errorf("Failed to close connection %s: %v", connID, err)
		}
		r.logger.Infof("Connection %s unregistered", connID)
	}
}

// ForEach visits a snapshot of the registered connections. Registrations and
// removals racing with the call are not reflected in the snapshot.
func (r *Registry) ForEach(visit func(Connection)) {
	r.mu.RLock()
	snapshot := make([]Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	for _, conn := range snapshot {
		visit(conn)
	}
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Close drains the registry and closes every connection. Used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	connections := r.connections
	r.connections = make(map[string]Connection)
	r.mu.Unlock()

	for id, conn := range connections {
		if err := conn.Close(); err != nil {
			r.logger.Errorf("Failed to close connection %s: %v", id, err)
		}
	}

	if len(connections) > 0 {
		r.logger.Infof("Closed %d connections", len(connections))
	}
}
