package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func feedServer(t *testing.T, hub *Hub) string {
	t.Helper()
	router := gin.New()
	router.GET("/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectedClients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("feed never reached %d clients", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewEventID(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewEventID()
		assert.True(t, strings.HasPrefix(id, "evt_"))
		_, dup := seen[id]
		require.False(t, dup, "duplicate event id %s", id)
		seen[id] = struct{}{}
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	url := feedServer(t, hub)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Publish(context.Background(), ActivityEvent{
		ID:    NewEventID(),
		Type:  "task_submitted",
		Title: "Annual Security Training",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "task_submitted")
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	url := feedServer(t, hub)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitForClients(t, hub, 1)

	cancel()
	<-hub.done

	t.Run("late connection is turned away instead of blocking", func(t *testing.T) {
		late, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer late.Close()

		late.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err = late.ReadMessage()
		assert.Error(t, err)
	})

	t.Run("unregister cannot block once the hub has stopped", func(t *testing.T) {
		// the read pump's teardown races hub shutdown; with no receiver
		// left on unregister, the done channel must release it
		conn.Close()
		released := make(chan struct{})
		go func() {
			select {
			case hub.unregister <- &client{hub: hub}:
			case <-hub.done:
			}
			close(released)
		}()
		select {
		case <-released:
		case <-time.After(2 * time.Second):
			t.Fatal("client teardown blocked after hub shutdown")
		}
	})
}
