package viewmodel

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/stream"
	"bondhub/internal/usecase"
)

type ChatListLoading struct{}

type ChatListLoaded struct {
	Chats []models.Chat `json:"chats"`
}

type ChatListFailed struct {
	Message string `json:"message"`
}

func (ChatListLoading) Name() string { return "loading" }
func (ChatListLoaded) Name() string  { return "loaded" }
func (ChatListFailed) Name() string  { return "failed" }

// ChatListViewModel drives the chat list screen.
type ChatListViewModel struct {
	states *stream.Stream[State]
}

// NewChatListViewModel starts observing userID's chats. It stops with ctx.
func NewChatListViewModel(ctx context.Context, uc *usecase.Set, userID string) *ChatListViewModel {
	states := stream.Start(ctx, func(ctx context.Context, emit func(State) bool) error {
		if !emit(ChatListLoading{}) {
			return nil
		}
		src := uc.ObserveChats.Execute(ctx, userID)
		err := stream.Forward(ctx, src, emit, func(chats []models.Chat) State {
			return ChatListLoaded{Chats: chats}
		})
		if err != nil {
			emit(ChatListFailed{Message: err.Error()})
		}
		return nil
	})
	return &ChatListViewModel{states: states}
}

func (vm *ChatListViewModel) States() *stream.Stream[State] { return vm.states }

func (vm *ChatListViewModel) Close() { vm.states.Close() }
