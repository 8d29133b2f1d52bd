package usecase

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

// SendMessage sends from the owner of a chat copy to the other participant.
type SendMessage struct {
	chats    repositories.ChatRepository
	messages repositories.ChatMessageRepository
}

func NewSendMessage(chats repositories.ChatRepository, messages repositories.ChatMessageRepository) *SendMessage {
	return &SendMessage{chats: chats, messages: messages}
}

func (u *SendMessage) Execute(ctx context.Context, chatID, senderID string, msg models.ChatMessage) (models.ChatMessage, error) {
	chat, err := u.chats.GetChat(ctx, chatID, senderID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	msg.ChatID = chat.ID
	msg.SenderID = senderID
	msg.ReceiverID = chat.OtherParticipant()
	return u.messages.SendMessage(ctx, msg)
}

type ObserveMessages struct{ messages repositories.ChatMessageRepository }

func NewObserveMessages(messages repositories.ChatMessageRepository) *ObserveMessages {
	return &ObserveMessages{messages: messages}
}

func (u *ObserveMessages) Execute(ctx context.Context, baseChatID string) *stream.Stream[[]models.ChatMessage] {
	return u.messages.ObserveMessages(ctx, baseChatID)
}

type GetMessages struct{ messages repositories.ChatMessageRepository }

func NewGetMessages(messages repositories.ChatMessageRepository) *GetMessages {
	return &GetMessages{messages: messages}
}

func (u *GetMessages) Execute(ctx context.Context, baseChatID string, limit int) ([]models.ChatMessage, error) {
	return u.messages.GetMessages(ctx, baseChatID, limit)
}

type UpdateMessageStatus struct{ messages repositories.ChatMessageRepository }

func NewUpdateMessageStatus(messages repositories.ChatMessageRepository) *UpdateMessageStatus {
	return &UpdateMessageStatus{messages: messages}
}

func (u *UpdateMessageStatus) Execute(ctx context.Context, baseChatID, messageID, userID string, status models.MessageStatus) error {
	return u.messages.UpdateMessageStatus(ctx, baseChatID, messageID, userID, status)
}

type MarkMessagesAsRead struct{ messages repositories.ChatMessageRepository }

func NewMarkMessagesAsRead(messages repositories.ChatMessageRepository) *MarkMessagesAsRead {
	return &MarkMessagesAsRead{messages: messages}
}

func (u *MarkMessagesAsRead) Execute(ctx context.Context, connectionID, receiverID string) error {
	return u.messages.MarkMessagesAsRead(ctx, connectionID, receiverID)
}

// MarkChatAsRead resolves a chat copy to its connection and marks the
// owner's received messages read.
type MarkChatAsRead struct {
	chats    repositories.ChatRepository
	messages repositories.ChatMessageRepository
}

func NewMarkChatAsRead(chats repositories.ChatRepository, messages repositories.ChatMessageRepository) *MarkChatAsRead {
	return &MarkChatAsRead{chats: chats, messages: messages}
}

func (u *MarkChatAsRead) Execute(ctx context.Context, chatID, userID string) error {
	chat, err := u.chats.GetChat(ctx, chatID, userID)
	if err != nil {
		return err
	}
	return u.messages.MarkMessagesAsRead(ctx, chat.ConnectionID, userID)
}

type DeleteMessage struct{ messages repositories.ChatMessageRepository }

func NewDeleteMessage(messages repositories.ChatMessageRepository) *DeleteMessage {
	return &DeleteMessage{messages: messages}
}

func (u *DeleteMessage) Execute(ctx context.Context, baseChatID, messageID, userID string) error {
	return u.messages.DeleteMessage(ctx, baseChatID, messageID, userID)
}
