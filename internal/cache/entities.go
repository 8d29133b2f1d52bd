package cache

import "errors"

// ErrNotFound is returned when a row is not cached.
var ErrNotFound = errors.New("not found in cache")

// UserProfileEntity is a row of user_profiles.
type UserProfileEntity struct {
	ID                   string `db:"id"`
	Email                string `db:"email"`
	DisplayName          string `db:"display_name"`
	ProfilePictureURL    string `db:"profile_picture_url"`
	ThumbnailURL         string `db:"profile_picture_thumbnail_url"`
	Bio                  string `db:"bio"`
	ProfileSetupComplete bool   `db:"profile_setup_complete"`
	LastUpdated          int64  `db:"last_updated"`
}

// ChatConnectionEntity is a row of chat_connections.
type ChatConnectionEntity struct {
	ID                string `db:"id"`
	User1ID           string `db:"user1_id"`
	User2ID           string `db:"user2_id"`
	InitiatorID       string `db:"initiator_id"`
	Status            string `db:"status"`
	CreatedAt         int64  `db:"created_at"`
	LastInteractionAt int64  `db:"last_interaction_at"`
}

// ChatEntity is a row of chats.
type ChatEntity struct {
	ID              string `db:"id"`
	BaseChatID      string `db:"base_chat_id"`
	ConnectionID    string `db:"connection_id"`
	OwnerID         string `db:"owner_id"`
	ParticipantIDs  IDList `db:"participant_ids"`
	DisplayName     string `db:"display_name"`
	ThumbnailURL    string `db:"thumbnail_url"`
	LastMessage     string `db:"last_message"`
	LastMessageTime int64  `db:"last_message_time"`
	UnreadCount     int    `db:"unread_count"`
}

// ChatMessageEntity is a row of chat_messages.
type ChatMessageEntity struct {
	ID            string `db:"id"`
	ChatID        string `db:"chat_id"`
	BaseChatID    string `db:"base_chat_id"`
	SenderID      string `db:"sender_id"`
	ReceiverID    string `db:"receiver_id"`
	Content       string `db:"content"`
	Timestamp     int64  `db:"timestamp"`
	Type          string `db:"type"`
	Status        string `db:"status"`
	AttachmentURL string `db:"attachment_url"`
}
