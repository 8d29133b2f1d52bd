package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bondhub/internal/mocks"
	"bondhub/internal/models"
	"bondhub/internal/notification"
	"bondhub/internal/stream"
	"bondhub/internal/usecase"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	client := NewClient(nil, ConnInfo{UserID: "alice"})

	hub.Add(client)
	assert.True(t, hub.IsActive("alice"))
	assert.Equal(t, []string{"alice"}, hub.ActiveUsers())

	assert.True(t, hub.Remove(client))
	assert.False(t, hub.IsActive("alice"))
	assert.Empty(t, hub.ActiveUsers())
	assert.False(t, hub.Remove(client))
}

func TestHubPostWithoutSocketsReportsOffline(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	assert.False(t, hub.Post("bob", notification.Notification{ID: "chat:x"}))
}

type staticTokens map[string]string

func (s staticTokens) ValidateToken(ctx context.Context, token string) (models.Session, error) {
	if id, ok := s[token]; ok {
		return models.Session{UserID: id, Token: token}, nil
	}
	return models.Session{}, errors.New("invalid token")
}

func newTestServer(t *testing.T, chats *mocks.ChatRepositoryMock) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	uc := usecase.New(usecase.Repositories{
		Auth:        new(mocks.AuthRepositoryMock),
		Profiles:    new(mocks.UserProfileRepositoryMock),
		Connections: new(mocks.ConnectionRepositoryMock),
		Chats:       chats,
		Messages:    new(mocks.MessageRepositoryMock),
	})
	hub := NewHub(nil, zap.NewNop())
	handler := NewHandler(hub, uc, staticTokens{"good": "alice"}, zap.NewNop())

	router := gin.New()
	router.GET("/ws/chats", handler.ChatList)
	router.GET("/ws/chats/:chat_id", handler.Messages)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t, new(mocks.ChatRepositoryMock))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMessagesHandshakeRejectsForeignChat(t *testing.T) {
	chats := new(mocks.ChatRepositoryMock)
	chats.On("GetChat", mock.Anything, "a_b_b", "alice").Return(models.Chat{}, models.ErrNotParticipant).Once()
	srv, _ := newTestServer(t, chats)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats/a_b_b?token=good"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChatListSessionStreamsStateAndNotifications(t *testing.T) {
	chats := new(mocks.ChatRepositoryMock)
	list := []models.Chat{{ID: "alice_bob_alice", BaseChatID: "alice_bob", OwnerID: "alice", DisplayName: "Bob"}}
	chats.On("ObserveChats", mock.Anything, "alice").Return(stream.Of(context.Background(), list)).Once()
	srv, hub := newTestServer(t, chats)

	header := http.Header{"Authorization": []string{"Bearer good"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chats"), header)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		var event struct {
			Type    string `json:"type"`
			Payload struct {
				State string `json:"state"`
				Data  struct {
					Chats []models.Chat `json:"chats"`
				} `json:"data"`
			} `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&event))
		require.Equal(t, "state", event.Type)
		if event.Payload.State == "loaded" {
			require.Len(t, event.Payload.Data.Chats, 1)
			assert.Equal(t, "Bob", event.Payload.Data.Chats[0].DisplayName)
			break
		}
	}

	require.True(t, hub.IsActive("alice"))
	require.True(t, hub.Post("alice", notification.Notification{ID: "chat:alice_bob_alice", Title: "Bob"}))

	var event struct {
		Type    string                    `json:"type"`
		Payload notification.Notification `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, "chat:alice_bob_alice", event.Payload.ID)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return !hub.IsActive("alice") }, 2*time.Second, 10*time.Millisecond)
}
