package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

// FeedChannel is the redis channel instances relay log events through.
const FeedChannel = "chat_events"

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub pushes message log events to every connected browser. With a redis
// client, events go through pub/sub so all instances see them; without one
// they are broadcast locally.
type Hub struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]*client
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, allowedOrigin string, log *logger.Logger) *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]*client),
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigin),
		},
		log: log.With("component", "ws"),
	}
}

func checkOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed == "" || allowed == "*" || origin == allowed
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	id := uuid.New()
	h.register(id, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("WebSocket connected", "client", id, "total", total)
}

func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if ok {
		c.conn.Close()
	}
	h.log.Debug("WebSocket disconnected", "client", id)
}

// ClientCount returns the number of open connections on this instance.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends msg to every listener.
func (h *Hub) Publish(ctx context.Context, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to encode feed event", "type", msg.Type, "error", err)
		return
	}

	if h.redisClient == nil {
		h.broadcast(data)
		return
	}
	if err := h.redisClient.Publish(ctx, FeedChannel, data).Err(); err != nil {
		h.log.Warn("Redis publish failed, broadcasting locally", "error", err)
		h.broadcast(data)
	}
}

// Run relays redis feed events to local clients until ctx is done. Without
// redis it just waits.
func (h *Hub) Run(ctx context.Context) error {
	if h.redisClient == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := h.redisClient.Subscribe(ctx, FeedChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.conn.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.log.Debug("WebSocket write failed", "error", err)
		}
	}
}
