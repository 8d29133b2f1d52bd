package models

import "time"

// MessageType is the payload kind of a ChatMessage.
type MessageType string

const (
	MessageText     MessageType = "TEXT"
	MessageImage    MessageType = "IMAGE"
	MessageLocation MessageType = "LOCATION"
	MessageVoice    MessageType = "VOICE"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageLocation, MessageVoice:
		return true
	}
	return false
}

// MessageStatus tracks delivery of a ChatMessage.
type MessageStatus string

const (
	StatusSending   MessageStatus = "SENDING"
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusRead      MessageStatus = "READ"
	StatusFailed    MessageStatus = "FAILED"
)

var statusRank = map[MessageStatus]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Valid reports whether s is a known status.
func (s MessageStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next keeps the status
// monotonic. FAILED is absorbing and only reachable from SENDING.
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	if s == next {
		return true
	}
	if s == StatusFailed {
		return false
	}
	if next == StatusFailed {
		return s == StatusSending
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	return ok && to > from
}

// ChatMessage is a single message in a conversation. Content never changes
// after creation; only Status moves.
type ChatMessage struct {
	ID            string        `json:"id"`
	ChatID        string        `json:"chat_id"`
	BaseChatID    string        `json:"base_chat_id"`
	SenderID      string        `json:"sender_id"`
	ReceiverID    string        `json:"receiver_id"`
	Content       string        `json:"content"`
	Timestamp     time.Time     `json:"timestamp"`
	Type          MessageType   `json:"type"`
	Status        MessageStatus `json:"status"`
	AttachmentURL string        `json:"attachment_url,omitempty"`
}

// ChatEvent is pushed to WebSocket sessions.
type ChatEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
