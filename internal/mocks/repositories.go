package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bondhub/internal/models"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

type AuthRepositoryMock struct {
	mock.Mock
}

func (m *AuthRepositoryMock) SignUp(ctx context.Context, email, password, displayName string) (models.Session, error) {
	args := m.Called(ctx, email, password, displayName)
	var s models.Session
	if val := args.Get(0); val != nil {
		s = val.(models.Session)
	}
	return s, args.Error(1)
}

func (m *AuthRepositoryMock) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	args := m.Called(ctx, email, password)
	var s models.Session
	if val := args.Get(0); val != nil {
		s = val.(models.Session)
	}
	return s, args.Error(1)
}

func (m *AuthRepositoryMock) SignOut(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AuthRepositoryMock) ValidateToken(ctx context.Context, token string) (models.Session, error) {
	args := m.Called(ctx, token)
	var s models.Session
	if val := args.Get(0); val != nil {
		s = val.(models.Session)
	}
	return s, args.Error(1)
}

func (m *AuthRepositoryMock) UpdateFCMToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

type UserProfileRepositoryMock struct {
	mock.Mock
}

func (m *UserProfileRepositoryMock) CreateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	args := m.Called(ctx, profile)
	var p models.UserProfile
	if val := args.Get(0); val != nil {
		p = val.(models.UserProfile)
	}
	return p, args.Error(1)
}

func (m *UserProfileRepositoryMock) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	args := m.Called(ctx, userID)
	var p models.UserProfile
	if val := args.Get(0); val != nil {
		p = val.(models.UserProfile)
	}
	return p, args.Error(1)
}

func (m *UserProfileRepositoryMock) ObserveProfile(ctx context.Context, userID string) *stream.Stream[*models.UserProfile] {
	args := m.Called(ctx, userID)
	return args.Get(0).(*stream.Stream[*models.UserProfile])
}

func (m *UserProfileRepositoryMock) UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	args := m.Called(ctx, profile)
	var p models.UserProfile
	if val := args.Get(0); val != nil {
		p = val.(models.UserProfile)
	}
	return p, args.Error(1)
}

func (m *UserProfileRepositoryMock) SearchUsers(ctx context.Context, term, excludeID string, limit int) ([]models.UserProfile, error) {
	args := m.Called(ctx, term, excludeID, limit)
	var list []models.UserProfile
	if val := args.Get(0); val != nil {
		list = val.([]models.UserProfile)
	}
	return list, args.Error(1)
}

func (m *UserProfileRepositoryMock) Refresh(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ConnectionRepositoryMock struct {
	mock.Mock
}

func (m *ConnectionRepositoryMock) SendConnectionRequest(ctx context.Context, fromID, toID string) (models.ChatConnection, error) {
	args := m.Called(ctx, fromID, toID)
	var c models.ChatConnection
	if val := args.Get(0); val != nil {
		c = val.(models.ChatConnection)
	}
	return c, args.Error(1)
}

func (m *ConnectionRepositoryMock) AcceptConnectionRequest(ctx context.Context, connectionID, userID string) (models.ChatConnection, error) {
	args := m.Called(ctx, connectionID, userID)
	var c models.ChatConnection
	if val := args.Get(0); val != nil {
		c = val.(models.ChatConnection)
	}
	return c, args.Error(1)
}

func (m *ConnectionRepositoryMock) RejectConnectionRequest(ctx context.Context, connectionID, userID string) error {
	args := m.Called(ctx, connectionID, userID)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) GetConnection(ctx context.Context, connectionID string) (models.ChatConnection, error) {
	args := m.Called(ctx, connectionID)
	var c models.ChatConnection
	if val := args.Get(0); val != nil {
		c = val.(models.ChatConnection)
	}
	return c, args.Error(1)
}

func (m *ConnectionRepositoryMock) ObserveConnections(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection] {
	args := m.Called(ctx, userID)
	return args.Get(0).(*stream.Stream[[]models.ChatConnection])
}

func (m *ConnectionRepositoryMock) ObservePendingRequests(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection] {
	args := m.Called(ctx, userID)
	return args.Get(0).(*stream.Stream[[]models.ChatConnection])
}

func (m *ConnectionRepositoryMock) DeleteConnection(ctx context.Context, connectionID, userID string) error {
	args := m.Called(ctx, connectionID, userID)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) Refresh(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateChatsForConnection(ctx context.Context, conn models.ChatConnection) ([]models.Chat, error) {
	args := m.Called(ctx, conn)
	var list []models.Chat
	if val := args.Get(0); val != nil {
		list = val.([]models.Chat)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID, userID string) (models.Chat, error) {
	args := m.Called(ctx, chatID, userID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ObserveChats(ctx context.Context, ownerID string) *stream.Stream[[]models.Chat] {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(*stream.Stream[[]models.Chat])
}

func (m *ChatRepositoryMock) DeleteChat(ctx context.Context, chatID, userID string) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) Refresh(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) SendMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	args := m.Called(ctx, msg)
	var out models.ChatMessage
	if val := args.Get(0); val != nil {
		out = val.(models.ChatMessage)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessages(ctx context.Context, baseChatID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, baseChatID, limit)
	var list []models.ChatMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatMessage)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) ObserveMessages(ctx context.Context, baseChatID string) *stream.Stream[[]models.ChatMessage] {
	args := m.Called(ctx, baseChatID)
	return args.Get(0).(*stream.Stream[[]models.ChatMessage])
}

func (m *MessageRepositoryMock) UpdateMessageStatus(ctx context.Context, baseChatID, messageID, userID string, status models.MessageStatus) error {
	args := m.Called(ctx, baseChatID, messageID, userID, status)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkMessagesAsRead(ctx context.Context, connectionID, receiverID string) error {
	args := m.Called(ctx, connectionID, receiverID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, baseChatID, messageID, userID string) error {
	args := m.Called(ctx, baseChatID, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) Refresh(ctx context.Context, baseChatID string) error {
	args := m.Called(ctx, baseChatID)
	return args.Error(0)
}

var (
	_ repositories.AuthRepository           = (*AuthRepositoryMock)(nil)
	_ repositories.UserProfileRepository    = (*UserProfileRepositoryMock)(nil)
	_ repositories.ChatConnectionRepository = (*ConnectionRepositoryMock)(nil)
	_ repositories.ChatRepository           = (*ChatRepositoryMock)(nil)
	_ repositories.ChatMessageRepository    = (*MessageRepositoryMock)(nil)
)
