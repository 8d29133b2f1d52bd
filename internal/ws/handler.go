package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"bondhub/internal/middleware"
	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/usecase"
	"bondhub/internal/viewmodel"
)

const (
	kindChatList    = "chat_list"
	kindMessages    = "messages"
	kindConnections = "connections"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves one view model per socket.
type Handler struct {
	hub    *Hub
	uc     *usecase.Set
	tokens middleware.TokenValidator
	log    *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, uc *usecase.Set, tokens middleware.TokenValidator, log *zap.Logger) *Handler {
	return &Handler{hub: hub, uc: uc, tokens: tokens, log: log}
}

// ChatList streams the caller's chat list.
func (h *Handler) ChatList(c *gin.Context) {
	h.serve(c, kindChatList, "", func(ctx context.Context, userID string) session {
		return chatListSession{viewmodel.NewChatListViewModel(ctx, h.uc, userID)}
	})
}

// Messages streams one conversation and accepts send and read frames.
func (h *Handler) Messages(c *gin.Context) {
	chatID := c.Param("chat_id")
	h.serve(c, kindMessages, chatID, func(ctx context.Context, userID string) session {
		return messagesSession{viewmodel.NewMessagesViewModel(ctx, h.uc, chatID, userID, h.log)}
	})
}

// Connections streams accepted and pending connections.
func (h *Handler) Connections(c *gin.Context) {
	h.serve(c, kindConnections, "", func(ctx context.Context, userID string) session {
		return connectionsSession{viewmodel.NewConnectionsViewModel(ctx, h.uc, userID)}
	})
}

func (h *Handler) serve(c *gin.Context, kind, resourceID string, open func(ctx context.Context, userID string) session) {
	ctx, span := otel.Tracer("bondhub/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token, ok := tokenFromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	sess, err := h.tokens.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	userID := sess.UserID

	if kind == kindMessages {
		if _, err := h.uc.GetChat.Execute(ctx, resourceID, userID); err != nil {
			switch {
			case errors.Is(err, models.ErrNotParticipant):
				c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for chat"})
			case errors.Is(err, models.ErrChatNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	meta := observability.RequestMetaFrom(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		Kind:        kind,
		ResourceID:  resourceID,
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := NewClient(conn, info)
	h.hub.Add(client)
	observability.IncWSActive(kind)
	h.hub.publish(info, "ws_connect", "")

	// the socket outlives the handshake request
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	vm := open(sessCtx, userID)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		h.write(sessCtx, client, vm)
	}()

	go func() {
		closeReason := h.read(sessCtx, client, vm)
		cancel()
		vm.Close()
		wg.Wait()
		if h.hub.Remove(client) {
			client.close()
		}
		observability.DecWSActive(kind)
		h.hub.publish(info, "ws_disconnect", closeReason)
	}()
}

// write renders view model output until the session ends.
func (h *Handler) write(ctx context.Context, client *Client, vm session) {
	states := vm.States()
	events := vm.Events()
	for {
		var event models.ChatEvent
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states.C():
			if !ok {
				return
			}
			event = models.ChatEvent{Type: "state", Payload: statePayload{State: state.Name(), Data: state}}
		case notice := <-events:
			event = models.ChatEvent{Type: "notice", Payload: notice}
		}
		if err := client.WriteJSON(event); err != nil {
			h.log.Debug("session write failed", zap.String("conn_id", client.info.ConnID), zap.Error(err))
			_ = client.conn.Close()
			return
		}
	}
}

// read dispatches inbound frames and returns why the socket closed.
func (h *Handler) read(ctx context.Context, client *Client, vm session) string {
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				h.hub.publish(client.info, "ws_error", err.Error())
			}
			return err.Error()
		}
		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			_ = client.WriteJSON(models.ChatEvent{Type: "notice", Payload: viewmodel.Notice{Message: "malformed frame", Error: true}})
			continue
		}
		if !vm.Handle(ctx, in) {
			_ = client.WriteJSON(models.ChatEvent{Type: "notice", Payload: viewmodel.Notice{Message: "unsupported action: " + in.Action, Error: true}})
		}
	}
}
