package remote

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Collection names as they appear in change notifications.
const (
	CollectionUsers       = "users"
	CollectionConnections = "chat_connections"
	CollectionChats       = "chats"
	CollectionMessages    = "messages"
)

// AccountDocument holds sign-in credentials.
type AccountDocument struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// UserDocument is a document of the users collection.
type UserDocument struct {
	ID                         string         `db:"id" json:"id"`
	Email                      string         `db:"email" json:"email"`
	DisplayName                string         `db:"display_name" json:"displayName"`
	ProfilePictureURL          sql.NullString `db:"profile_picture_url" json:"profilePictureUrl"`
	ProfilePictureThumbnailURL sql.NullString `db:"profile_picture_thumbnail_url" json:"profilePictureThumbnailUrl"`
	Bio                        sql.NullString `db:"bio" json:"bio"`
	ProfileSetupComplete       bool           `db:"profile_setup_complete" json:"profileSetupComplete"`
	FCMToken                   sql.NullString `db:"fcm_token" json:"fcmToken"`
	LastUpdated                time.Time      `db:"last_updated" json:"lastUpdated"`
}

// ConnectionDocument is a document of the chat_connections collection.
type ConnectionDocument struct {
	ID                string    `db:"id" json:"id"`
	User1ID           string    `db:"user1_id" json:"user1Id"`
	User2ID           string    `db:"user2_id" json:"user2Id"`
	InitiatorID       string    `db:"initiator_id" json:"initiatorId"`
	Status            string    `db:"status" json:"status"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	LastInteractionAt time.Time `db:"last_interaction_at" json:"lastInteractionAt"`
}

// ChatDocument is one participant's copy of a chat summary.
type ChatDocument struct {
	ID                 string         `db:"id" json:"chatId"`
	BaseChatID         string         `db:"base_chat_id" json:"baseChatId"`
	ConnectionID       string         `db:"connection_id" json:"connectionId"`
	OwnerID            string         `db:"owner_id" json:"ownerId"`
	ParticipantIDs     pq.StringArray `db:"participant_ids" json:"participantIds"`
	DisplayName        sql.NullString `db:"display_name" json:"displayName"`
	ThumbnailURL       sql.NullString `db:"thumbnail_url" json:"thumbnailUrl"`
	LastMessage        sql.NullString `db:"last_message" json:"lastMessage"`
	LastMessageTime    sql.NullTime   `db:"last_message_time" json:"lastMessageTime"`
	UnreadMessageCount int            `db:"unread_message_count" json:"unreadMessageCount"`
}

// MessageDocument lives at messages/{baseChatId}/messages/{messageId}.
type MessageDocument struct {
	ID            string         `db:"id" json:"messageId"`
	BaseChatID    string         `db:"base_chat_id" json:"baseChatId"`
	ChatID        string         `db:"chat_id" json:"chatId"`
	SenderID      string         `db:"sender_id" json:"senderId"`
	ReceiverID    string         `db:"receiver_id" json:"receiverId"`
	Content       string         `db:"content" json:"content"`
	Type          string         `db:"type" json:"type"`
	Status        string         `db:"status" json:"status"`
	AttachmentURL sql.NullString `db:"attachment_url" json:"attachmentUrl"`
	Timestamp     time.Time      `db:"timestamp" json:"timestamp"`
}
