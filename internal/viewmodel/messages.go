package viewmodel

import (
	"context"

	"go.uber.org/zap"

	"bondhub/internal/models"
	"bondhub/internal/stream"
	"bondhub/internal/usecase"
)

type MessagesLoading struct{}

type MessagesLoaded struct {
	Chat     models.Chat          `json:"chat"`
	Messages []models.ChatMessage `json:"messages"`
}

type MessagesFailed struct {
	Message string `json:"message"`
}

func (MessagesLoading) Name() string { return "loading" }
func (MessagesLoaded) Name() string  { return "loaded" }
func (MessagesFailed) Name() string  { return "failed" }

// MessagesViewModel drives one conversation screen.
type MessagesViewModel struct {
	uc     *usecase.Set
	chatID string
	userID string
	log    *zap.Logger

	states  *stream.Stream[State]
	notices notices
}

// NewMessagesViewModel resolves chatID for userID and streams its messages.
func NewMessagesViewModel(ctx context.Context, uc *usecase.Set, chatID, userID string, log *zap.Logger) *MessagesViewModel {
	vm := &MessagesViewModel{
		uc:      uc,
		chatID:  chatID,
		userID:  userID,
		log:     log,
		notices: newNotices(),
	}
	vm.states = stream.Start(ctx, func(ctx context.Context, emit func(State) bool) error {
		if !emit(MessagesLoading{}) {
			return nil
		}
		chat, err := uc.GetChat.Execute(ctx, chatID, userID)
		if err != nil {
			emit(MessagesFailed{Message: err.Error()})
			return nil
		}
		src := uc.ObserveMessages.Execute(ctx, chat.BaseChatID)
		err = stream.Forward(ctx, src, emit, func(msgs []models.ChatMessage) State {
			return MessagesLoaded{Chat: chat, Messages: msgs}
		})
		if err != nil {
			emit(MessagesFailed{Message: err.Error()})
		}
		return nil
	})
	return vm
}

func (vm *MessagesViewModel) States() *stream.Stream[State] { return vm.states }

// Events delivers one-shot notices.
func (vm *MessagesViewModel) Events() <-chan Notice { return vm.notices }

// Send posts a message. Failures surface as notices; the failed message
// stays visible with status FAILED.
func (vm *MessagesViewModel) Send(ctx context.Context, content string, typ models.MessageType, attachmentURL string) {
	if content == "" && attachmentURL == "" {
		return
	}
	_, err := vm.uc.SendMessage.Execute(ctx, vm.chatID, vm.userID, models.ChatMessage{
		Content:       content,
		Type:          typ,
		AttachmentURL: attachmentURL,
	})
	if err != nil {
		vm.log.Debug("send failed", zap.String("chat_id", vm.chatID), zap.Error(err))
		vm.notices.post(err.Error(), true)
	}
}

// MarkRead marks every received message in the chat as read.
func (vm *MessagesViewModel) MarkRead(ctx context.Context) {
	if err := vm.uc.MarkChatAsRead.Execute(ctx, vm.chatID, vm.userID); err != nil {
		vm.notices.post(err.Error(), true)
	}
}

func (vm *MessagesViewModel) Close() { vm.states.Close() }
