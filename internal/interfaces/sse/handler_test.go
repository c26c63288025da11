package sse

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
)

func newTestStream(t *testing.T) (*httptest.Server, *hub.Registry, *hub.Broadcaster) {
	t.Helper()

	log := logger.NewNopLogger()
	registry := hub.NewRegistry(log)
	broadcaster := hub.NewBroadcaster(registry, log)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	InitSSERouter(log, registry, router.Group(""))

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		registry.Close()
		server.Close()
	})

	return server, registry, broadcaster
}

func waitForConnections(t *testing.T, registry *hub.Registry, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d registered connections, got %d", n, registry.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSSE_StreamsBroadcasts(t *testing.T) {
	server, registry, broadcaster := newTestStream(t)

	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	waitForConnections(t, registry, 1)

	payload := `{"event_type":"user_created","message":"hello"}`
	broadcaster.Broadcast([]byte(payload))

	// The stream opens with a "connected" event, then carries broadcasts.
	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimPrefix(line, "event:")
		}
		if strings.HasPrefix(line, "data:") && event == "notification" {
			data = strings.TrimPrefix(line, "data:")
			break
		}
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, "notification", event)
	assert.Equal(t, payload, data)
}

func TestSSE_ClientDisconnectUnregisters(t *testing.T) {
	server, registry, _ := newTestStream(t)

	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)

	waitForConnections(t, registry, 1)

	resp.Body.Close()
	waitForConnections(t, registry, 0)
}
