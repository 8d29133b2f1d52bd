// Package notification carries new-message pushes from the remote store to
// a user's devices: the dispatcher builds the data payload on the backend,
// the handler turns a delivered payload into a tray notification.
package notification

import (
	"errors"
	"fmt"
	"strconv"
)

// Payload keys. Every value travels as a string.
const (
	KeyTitle       = "title"
	KeyMessage     = "message"
	KeySenderName  = "senderName"
	KeySenderImage = "senderImage"
	KeyChatID      = "chatId"
	KeyBaseChatID  = "baseChatId"
	KeySenderID    = "senderId"
	KeyUnreadCount = "unreadCount"
)

// Deep-link extras attached to the tap action.
const (
	ExtraChatID      = "CHAT_ID"
	ExtraOtherUserID = "OTHER_USER_ID"
)

var ErrInvalidPayload = errors.New("invalid notification payload")

// Payload is the data-only push message for one new chat message.
type Payload struct {
	Title       string
	Message     string
	SenderName  string
	SenderImage string
	ChatID      string
	BaseChatID  string
	SenderID    string
	UnreadCount int
}

// Data flattens p into the wire map.
func (p Payload) Data() map[string]string {
	return map[string]string{
		KeyTitle:       p.Title,
		KeyMessage:     p.Message,
		KeySenderName:  p.SenderName,
		KeySenderImage: p.SenderImage,
		KeyChatID:      p.ChatID,
		KeyBaseChatID:  p.BaseChatID,
		KeySenderID:    p.SenderID,
		KeyUnreadCount: strconv.Itoa(p.UnreadCount),
	}
}

// ParsePayload reads a delivered data map. chatId and senderId are required;
// a malformed unreadCount reads as zero.
func ParsePayload(data map[string]string) (Payload, error) {
	p := Payload{
		Title:       data[KeyTitle],
		Message:     data[KeyMessage],
		SenderName:  data[KeySenderName],
		SenderImage: data[KeySenderImage],
		ChatID:      data[KeyChatID],
		BaseChatID:  data[KeyBaseChatID],
		SenderID:    data[KeySenderID],
	}
	if p.ChatID == "" || p.SenderID == "" {
		return Payload{}, fmt.Errorf("%w: missing %s or %s", ErrInvalidPayload, KeyChatID, KeySenderID)
	}
	if n, err := strconv.Atoi(data[KeyUnreadCount]); err == nil && n > 0 {
		p.UnreadCount = n
	}
	if p.Title == "" {
		p.Title = p.SenderName
	}
	return p, nil
}

// PushMessage is what travels over the push transport.
type PushMessage struct {
	Token      string            `json:"token"`
	ReceiverID string            `json:"receiver_id"`
	Data       map[string]string `json:"data"`
}

// RoutingKey addresses pushes for receiverID.
func RoutingKey(receiverID string) string {
	return "push." + receiverID
}

// BindingKey matches every push routing key.
const BindingKey = "push.#"
