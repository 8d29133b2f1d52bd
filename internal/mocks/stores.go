package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"bondhub/internal/remote"
	"bondhub/internal/repositories"
)

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) UpsertUser(ctx context.Context, doc remote.UserDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *UserStoreMock) GetUser(ctx context.Context, id string) (remote.UserDocument, error) {
	args := m.Called(ctx, id)
	var doc remote.UserDocument
	if val := args.Get(0); val != nil {
		doc = val.(remote.UserDocument)
	}
	return doc, args.Error(1)
}

func (m *UserStoreMock) GetUsers(ctx context.Context, ids []string) ([]remote.UserDocument, error) {
	args := m.Called(ctx, ids)
	var docs []remote.UserDocument
	if val := args.Get(0); val != nil {
		docs = val.([]remote.UserDocument)
	}
	return docs, args.Error(1)
}

func (m *UserStoreMock) SearchUsers(ctx context.Context, term string, limit int) ([]remote.UserDocument, error) {
	args := m.Called(ctx, term, limit)
	var docs []remote.UserDocument
	if val := args.Get(0); val != nil {
		docs = val.([]remote.UserDocument)
	}
	return docs, args.Error(1)
}

func (m *UserStoreMock) UpdateFCMToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

type AccountStoreMock struct {
	mock.Mock
}

func (m *AccountStoreMock) CreateAccount(ctx context.Context, doc remote.AccountDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *AccountStoreMock) DeleteAccount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AccountStoreMock) GetAccountByEmail(ctx context.Context, email string) (remote.AccountDocument, error) {
	args := m.Called(ctx, email)
	var doc remote.AccountDocument
	if val := args.Get(0); val != nil {
		doc = val.(remote.AccountDocument)
	}
	return doc, args.Error(1)
}

type ConnectionStoreMock struct {
	mock.Mock
}

func (m *ConnectionStoreMock) CreateConnection(ctx context.Context, doc remote.ConnectionDocument) (remote.ConnectionDocument, error) {
	args := m.Called(ctx, doc)
	var stored remote.ConnectionDocument
	switch val := args.Get(0).(type) {
	case func(remote.ConnectionDocument) remote.ConnectionDocument:
		stored = val(doc)
	case remote.ConnectionDocument:
		stored = val
	}
	return stored, args.Error(1)
}

func (m *ConnectionStoreMock) FindConnection(ctx context.Context, a, b string) (remote.ConnectionDocument, error) {
	args := m.Called(ctx, a, b)
	var doc remote.ConnectionDocument
	if val := args.Get(0); val != nil {
		doc = val.(remote.ConnectionDocument)
	}
	return doc, args.Error(1)
}

func (m *ConnectionStoreMock) GetConnection(ctx context.Context, id string) (remote.ConnectionDocument, error) {
	args := m.Called(ctx, id)
	var doc remote.ConnectionDocument
	if val := args.Get(0); val != nil {
		doc = val.(remote.ConnectionDocument)
	}
	return doc, args.Error(1)
}

func (m *ConnectionStoreMock) ListConnections(ctx context.Context, userID string) ([]remote.ConnectionDocument, error) {
	args := m.Called(ctx, userID)
	var docs []remote.ConnectionDocument
	if val := args.Get(0); val != nil {
		docs = val.([]remote.ConnectionDocument)
	}
	return docs, args.Error(1)
}

func (m *ConnectionStoreMock) UpdateConnectionStatus(ctx context.Context, id, status string, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *ConnectionStoreMock) DeleteConnection(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ChatStoreMock struct {
	mock.Mock
}

func (m *ChatStoreMock) CreateChat(ctx context.Context, doc remote.ChatDocument) (remote.ChatDocument, error) {
	args := m.Called(ctx, doc)
	var stored remote.ChatDocument
	switch val := args.Get(0).(type) {
	case func(remote.ChatDocument) remote.ChatDocument:
		stored = val(doc)
	case remote.ChatDocument:
		stored = val
	}
	return stored, args.Error(1)
}

func (m *ChatStoreMock) GetChat(ctx context.Context, id string) (remote.ChatDocument, error) {
	args := m.Called(ctx, id)
	var doc remote.ChatDocument
	if val := args.Get(0); val != nil {
		doc = val.(remote.ChatDocument)
	}
	return doc, args.Error(1)
}

func (m *ChatStoreMock) ListChats(ctx context.Context, ownerID string) ([]remote.ChatDocument, error) {
	args := m.Called(ctx, ownerID)
	var docs []remote.ChatDocument
	if val := args.Get(0); val != nil {
		docs = val.([]remote.ChatDocument)
	}
	return docs, args.Error(1)
}

func (m *ChatStoreMock) ListChatsByConnection(ctx context.Context, connectionID string) ([]remote.ChatDocument, error) {
	args := m.Called(ctx, connectionID)
	var docs []remote.ChatDocument
	if val := args.Get(0); val != nil {
		docs = val.([]remote.ChatDocument)
	}
	return docs, args.Error(1)
}

func (m *ChatStoreMock) ResetUnreadCount(ctx context.Context, connectionID, ownerID string) error {
	args := m.Called(ctx, connectionID, ownerID)
	return args.Error(0)
}

func (m *ChatStoreMock) DeleteChat(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MessageStoreMock struct {
	mock.Mock
}

func (m *MessageStoreMock) InsertMessage(ctx context.Context, doc remote.MessageDocument) (remote.MessageDocument, error) {
	args := m.Called(ctx, doc)
	var stored remote.MessageDocument
	switch val := args.Get(0).(type) {
	case func(remote.MessageDocument) remote.MessageDocument:
		stored = val(doc)
	case remote.MessageDocument:
		stored = val
	}
	return stored, args.Error(1)
}

func (m *MessageStoreMock) GetMessage(ctx context.Context, baseChatID, id string) (remote.MessageDocument, error) {
	args := m.Called(ctx, baseChatID, id)
	var doc remote.MessageDocument
	if val := args.Get(0); val != nil {
		doc = val.(remote.MessageDocument)
	}
	return doc, args.Error(1)
}

func (m *MessageStoreMock) ListMessages(ctx context.Context, baseChatID string, limit int) ([]remote.MessageDocument, error) {
	args := m.Called(ctx, baseChatID, limit)
	var docs []remote.MessageDocument
	if val := args.Get(0); val != nil {
		docs = val.([]remote.MessageDocument)
	}
	return docs, args.Error(1)
}

func (m *MessageStoreMock) UpdateMessageStatus(ctx context.Context, baseChatID, id, status string) error {
	args := m.Called(ctx, baseChatID, id, status)
	return args.Error(0)
}

func (m *MessageStoreMock) MarkMessagesRead(ctx context.Context, baseChatID, receiverID string) (int64, error) {
	args := m.Called(ctx, baseChatID, receiverID)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MessageStoreMock) DeleteMessage(ctx context.Context, baseChatID, id string) error {
	args := m.Called(ctx, baseChatID, id)
	return args.Error(0)
}

var (
	_ repositories.UserStore       = (*UserStoreMock)(nil)
	_ repositories.AccountStore    = (*AccountStoreMock)(nil)
	_ repositories.ConnectionStore = (*ConnectionStoreMock)(nil)
	_ repositories.ChatStore       = (*ChatStoreMock)(nil)
	_ repositories.MessageStore    = (*MessageStoreMock)(nil)
)
