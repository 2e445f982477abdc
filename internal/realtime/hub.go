// Package realtime pushes dashboard activity events to connected browsers
// over websockets. Events are also published to Redis so every instance
// behind a load balancer fans out the same feed.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const activityChannel = "compliancehub:activity"

// ActivityEvent is one item in the live activity feed.
type ActivityEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Actor      string    `json:"actor"`
	EntityID   string    `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	Title      string    `json:"title"`
	Timestamp  time.Time `json:"timestamp"`
}

// Hub maintains the set of connected clients and broadcasts activity to
// them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	redis      *redis.Client
	logger     *zap.Logger
	mu         sync.RWMutex
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates the hub. The Redis client is optional; without it events
// stay instance-local.
func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		redis:      rdb,
		logger:     logger,
	}
}

// Run processes client registration and broadcasting until ctx is done.
// Call it exactly once; after it returns no new clients are accepted and
// pending registrations unblock.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("Activity feed client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("Activity feed client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish pushes an activity event to the feed. With Redis configured the
// event goes through pub/sub and the subscription relays it to local
// clients, so every instance (this one included) delivers it exactly once.
// Without Redis it goes straight to the local broadcast loop.
func (h *Hub) Publish(ctx context.Context, event ActivityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal activity event", zap.Error(err))
		return
	}

	if h.redis != nil {
		err := h.redis.Publish(ctx, activityChannel, data).Err()
		if err == nil {
			return
		}
		h.logger.Warn("Failed to publish activity to redis, falling back to local broadcast", zap.Error(err))
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Activity feed broadcast buffer full, dropping event",
			zap.String("event_id", event.ID))
	}
}

// SubscribeToRedis relays events from the shared channel into the local
// broadcast loop. Blocks until ctx is done.
func (h *Hub) SubscribeToRedis(ctx context.Context) {
	if h.redis == nil {
		return
	}
	pubsub := h.redis.Subscribe(ctx, activityChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			h.broadcast <- []byte(msg.Payload)
		}
	}
}

// HandleWebSocket upgrades the request and attaches the client to the feed.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	cl := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}

// ConnectedClients returns the number of attached feed clients.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// The feed is one-way; incoming frames are drained only to detect
	// disconnects.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Activity feed read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NewEventID builds a unique id for an activity event. Events from every
// instance land on the same Redis channel, so the id must not depend on
// local clocks.
func NewEventID() string {
	return "evt_" + uuid.NewString()
}
