package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"go-user-notify/internal/infrastructure/logger"
)

// newWebSocketPair upgrades a real connection over httptest and returns the
// server-side connection together with the client socket.
func newWebSocketPair(t *testing.T) (*WebSocketConnection, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	connCh := make(chan *WebSocketConnection, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewWebSocketConnection("ws-test", ws, DefaultSendQueueSize, logger.NewNopLogger())
		connCh <- conn
		<-conn.Context().Done()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-connCh:
		return conn, client
	case <-time.After(2 * time.Second):
		t.Fatal("Server never produced a connection")
		return nil, nil
	}
}

func TestWebSocketConnection_CloseSendsCloseFrame(t *testing.T) {
	conn, client := newWebSocketPair(t)

	// Close from a goroutine that is not the write pump.
	go conn.Close()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := client.ReadMessage()
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			t.Fatalf("Expected normal close frame, got %v", err)
		}
		break
	}

	if conn.State() != StateClosed {
		t.Errorf("Expected closed state, got %s", conn.State())
	}
	if err := conn.Enqueue([]byte(`{}`)); err != ErrConnectionClosed {
		t.Errorf("Expected ErrConnectionClosed after close, got %v", err)
	}
}

func TestWebSocketConnection_CloseDuringWrites(t *testing.T) {
	conn, client := newWebSocketPair(t)

	// Drain the client side until the server closes the socket.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		client.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Enqueue from several goroutines while the connection is being closed;
	// only the write pump may touch the socket.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := conn.Enqueue([]byte(`{"event_type":"message"}`)); err != nil {
					return
				}
			}
		}()
	}

	conn.Close()
	wg.Wait()

	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("Client never observed the socket closing")
	}
}
