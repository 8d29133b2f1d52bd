package repositories

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"bondhub/internal/remote"
)

var tracer = otel.Tracer("bondhub/repositories")

// UserStore is the remote users collection.
type UserStore interface {
	UpsertUser(ctx context.Context, doc remote.UserDocument) error
	GetUser(ctx context.Context, id string) (remote.UserDocument, error)
	GetUsers(ctx context.Context, ids []string) ([]remote.UserDocument, error)
	SearchUsers(ctx context.Context, term string, limit int) ([]remote.UserDocument, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

// AccountStore holds credentials.
type AccountStore interface {
	CreateAccount(ctx context.Context, doc remote.AccountDocument) error
	GetAccountByEmail(ctx context.Context, email string) (remote.AccountDocument, error)
	DeleteAccount(ctx context.Context, id string) error
}

// ConnectionStore is the remote chat_connections collection.
type ConnectionStore interface {
	CreateConnection(ctx context.Context, doc remote.ConnectionDocument) (remote.ConnectionDocument, error)
	FindConnection(ctx context.Context, a, b string) (remote.ConnectionDocument, error)
	GetConnection(ctx context.Context, id string) (remote.ConnectionDocument, error)
	ListConnections(ctx context.Context, userID string) ([]remote.ConnectionDocument, error)
	UpdateConnectionStatus(ctx context.Context, id, status string, at time.Time) error
	DeleteConnection(ctx context.Context, id string) error
}

// ChatStore is the remote chats collection.
type ChatStore interface {
	CreateChat(ctx context.Context, doc remote.ChatDocument) (remote.ChatDocument, error)
	GetChat(ctx context.Context, id string) (remote.ChatDocument, error)
	ListChats(ctx context.Context, ownerID string) ([]remote.ChatDocument, error)
	ListChatsByConnection(ctx context.Context, connectionID string) ([]remote.ChatDocument, error)
	ResetUnreadCount(ctx context.Context, connectionID, ownerID string) error
	DeleteChat(ctx context.Context, id string) error
}

// MessageStore is the remote messages collection.
type MessageStore interface {
	InsertMessage(ctx context.Context, doc remote.MessageDocument) (remote.MessageDocument, error)
	GetMessage(ctx context.Context, baseChatID, id string) (remote.MessageDocument, error)
	ListMessages(ctx context.Context, baseChatID string, limit int) ([]remote.MessageDocument, error)
	UpdateMessageStatus(ctx context.Context, baseChatID, id, status string) error
	MarkMessagesRead(ctx context.Context, baseChatID, receiverID string) (int64, error)
	DeleteMessage(ctx context.Context, baseChatID, id string) error
}

var (
	_ UserStore       = (*remote.Client)(nil)
	_ AccountStore    = (*remote.Client)(nil)
	_ ConnectionStore = (*remote.Client)(nil)
	_ ChatStore       = (*remote.Client)(nil)
	_ MessageStore    = (*remote.Client)(nil)
)

var now = func() time.Time { return time.Now().UTC() }

var (
	_ AuthRepository           = (*AuthRepo)(nil)
	_ UserProfileRepository    = (*UserProfileRepo)(nil)
	_ ChatConnectionRepository = (*ChatConnectionRepo)(nil)
	_ ChatRepository           = (*ChatRepo)(nil)
	_ ChatMessageRepository    = (*ChatMessageRepo)(nil)
)
