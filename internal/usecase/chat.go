package usecase

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

type ObserveChats struct{ chats repositories.ChatRepository }

func NewObserveChats(chats repositories.ChatRepository) *ObserveChats {
	return &ObserveChats{chats: chats}
}

func (u *ObserveChats) Execute(ctx context.Context, userID string) *stream.Stream[[]models.Chat] {
	return u.chats.ObserveChats(ctx, userID)
}

type GetChat struct{ chats repositories.ChatRepository }

func NewGetChat(chats repositories.ChatRepository) *GetChat { return &GetChat{chats: chats} }

func (u *GetChat) Execute(ctx context.Context, chatID, userID string) (models.Chat, error) {
	return u.chats.GetChat(ctx, chatID, userID)
}

type DeleteChat struct{ chats repositories.ChatRepository }

func NewDeleteChat(chats repositories.ChatRepository) *DeleteChat { return &DeleteChat{chats: chats} }

func (u *DeleteChat) Execute(ctx context.Context, chatID, userID string) error {
	return u.chats.DeleteChat(ctx, chatID, userID)
}
