package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bondhub/internal/models"
	"bondhub/internal/notification"
	"bondhub/internal/observability"
)

const writeWait = 10 * time.Second

// Publisher receives WebSocket lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Client is one open socket. Writes are serialized because the session
// writer and hub pushes share the connection.
type Client struct {
	conn *websocket.Conn
	info ConnInfo

	mu sync.Mutex
}

func NewClient(conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{conn: conn, info: info}
}

func (c *Client) Info() ConnInfo { return c.info }

// WriteJSON sends v as one text frame.
func (c *Client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = c.conn.Close()
}

// Hub tracks the sockets of every connected user on this node. It is also
// the notification tray: a notification is shown on every socket the
// receiver has open.
type Hub struct {
	clients   map[string]map[*Client]struct{}
	mu        sync.RWMutex
	publisher Publisher
	log       *zap.Logger
}

var _ notification.Tray = (*Hub)(nil)

// NewHub creates an empty hub. publisher may be nil.
func NewHub(publisher Publisher, log *zap.Logger) *Hub {
	return &Hub{
		clients:   make(map[string]map[*Client]struct{}),
		publisher: publisher,
		log:       log,
	}
}

// Add registers a client under its user.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID := c.info.UserID
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

// Remove unregisters a client. It reports whether the client was present.
func (h *Hub) Remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID := c.info.UserID
	clients, ok := h.clients[userID]
	if !ok {
		return false
	}
	if _, ok := clients[c]; !ok {
		return false
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
	return true
}

// IsActive reports whether userID has at least one open socket.
func (h *Hub) IsActive(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ActiveUsers lists users with an open socket.
func (h *Hub) ActiveUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]string, 0, len(h.clients))
	for id := range h.clients {
		users = append(users, id)
	}
	return users
}

// SendToUser writes event to every socket of userID and returns how many
// accepted it. Sockets that fail are closed and dropped.
func (h *Hub) SendToUser(userID string, event models.ChatEvent) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if err := c.WriteJSON(event); err != nil {
			h.log.Warn("websocket write error", zap.String("user_id", userID), zap.String("conn_id", c.info.ConnID), zap.Error(err))
			if h.Remove(c) {
				c.close()
				h.publish(c.info, "ws_error", err.Error())
			}
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) Post(userID string, n notification.Notification) bool {
	return h.SendToUser(userID, models.ChatEvent{Type: "notification", Payload: n}) > 0
}

func (h *Hub) Update(userID string, n notification.Notification) bool {
	return h.SendToUser(userID, models.ChatEvent{Type: "notification_update", Payload: n}) > 0
}

func (h *Hub) Cancel(userID, notificationID string) {
	h.SendToUser(userID, models.ChatEvent{Type: "notification_cancel", Payload: map[string]string{"id": notificationID}})
}

func (h *Hub) publish(info ConnInfo, event, reason string) {
	observability.IncWSEvent(info.Kind, event)
	if h.publisher == nil {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        info.Kind,
			"resource_id": info.ResourceID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	ctx := observability.WithHeaders(context.Background(), observability.BuildHeaders(info.RequestID, info.TraceID))
	if err := h.publisher.Publish(ctx, wsRoutingKey(info.Kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}); err != nil {
		h.log.Debug("ws event publish failed", zap.String("event", event), zap.Error(err))
	}
}

func wsRoutingKey(kind string) string {
	return "ws_events." + kind
}
