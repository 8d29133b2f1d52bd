package notification

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/remote"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

var tracer = otel.Tracer("bondhub/notification")

// Publisher sends a push to the transport.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Dispatcher is the backend side: one push per newly inserted message.
type Dispatcher struct {
	messages  repositories.MessageStore
	users     repositories.UserStore
	chats     repositories.ChatStore
	publisher Publisher
	log       *zap.Logger
}

func NewDispatcher(messages repositories.MessageStore, users repositories.UserStore, chats repositories.ChatStore, publisher Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{messages: messages, users: users, chats: chats, publisher: publisher, log: log}
}

// Run dispatches every message insert seen on changes until ctx is done or
// the feed ends. A failed dispatch is logged and does not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, changes *stream.Stream[remote.Change]) error {
	for {
		change, ok := changes.Next(ctx)
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			return changes.Err()
		}
		if change.Collection != remote.CollectionMessages || !change.Inserted() {
			continue
		}
		if err := d.Dispatch(ctx, change.Key(0), change.ID); err != nil {
			d.log.Error("dispatch notification",
				zap.String("path", remote.MessagePath(change.Key(0), change.ID)),
				zap.Error(err))
		}
	}
}

// Dispatch builds and publishes the push for one message. A receiver without
// a registered device token is skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, baseChatID, messageID string) error {
	ctx, span := tracer.Start(ctx, "notification.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("base_chat_id", baseChatID), attribute.String("message_id", messageID))

	msg, err := d.messages.GetMessage(ctx, baseChatID, messageID)
	if err != nil {
		observability.IncNotification("dispatch", "error")
		return fmt.Errorf("read message: %w", err)
	}

	var (
		receiver remote.UserDocument
		sender   remote.UserDocument
		chat     remote.ChatDocument
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		receiver, err = d.users.GetUser(gctx, msg.ReceiverID)
		return err
	})
	g.Go(func() error {
		var err error
		sender, err = d.users.GetUser(gctx, msg.SenderID)
		return err
	})
	g.Go(func() error {
		var err error
		chat, err = d.chats.GetChat(gctx, models.ChatCopyID(baseChatID, msg.ReceiverID))
		if errors.Is(err, remote.ErrDocumentNotFound) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		observability.IncNotification("dispatch", "error")
		return fmt.Errorf("read notification context: %w", err)
	}

	if !receiver.FCMToken.Valid || receiver.FCMToken.String == "" {
		observability.IncNotification("dispatch", "no_token")
		d.log.Debug("receiver has no device token", zap.String("receiver_id", msg.ReceiverID))
		return nil
	}

	senderImage := sender.ProfilePictureThumbnailURL.String
	if senderImage == "" {
		senderImage = sender.ProfilePictureURL.String
	}
	payload := Payload{
		Title:       sender.DisplayName,
		Message:     Preview(models.MessageType(msg.Type), msg.Content),
		SenderName:  sender.DisplayName,
		SenderImage: senderImage,
		ChatID:      models.ChatCopyID(baseChatID, msg.ReceiverID),
		BaseChatID:  baseChatID,
		SenderID:    msg.SenderID,
		UnreadCount: chat.UnreadMessageCount,
	}
	push := PushMessage{Token: receiver.FCMToken.String, ReceiverID: msg.ReceiverID, Data: payload.Data()}
	if err := d.publisher.Publish(ctx, RoutingKey(msg.ReceiverID), push); err != nil {
		observability.IncNotification("dispatch", "error")
		return fmt.Errorf("publish push: %w", err)
	}
	observability.IncNotification("dispatch", "sent")
	return nil
}

// Preview is the notification body for a message.
func Preview(typ models.MessageType, content string) string {
	switch typ {
	case models.MessageImage:
		return "📷 Photo"
	case models.MessageLocation:
		return "📍 Location"
	case models.MessageVoice:
		return "🎤 Voice message"
	}
	return content
}
