package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bondhub/internal/cache"
	"bondhub/internal/mapper"
	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/remote"
	"bondhub/internal/stream"
)

// DefaultMessageWindow is how many recent messages a refresh pulls.
const DefaultMessageWindow = 100

// ChatMessageRepository sends and tracks messages.
type ChatMessageRepository interface {
	SendMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error)
	GetMessages(ctx context.Context, baseChatID string, limit int) ([]models.ChatMessage, error)
	ObserveMessages(ctx context.Context, baseChatID string) *stream.Stream[[]models.ChatMessage]
	UpdateMessageStatus(ctx context.Context, baseChatID, messageID, userID string, status models.MessageStatus) error
	MarkMessagesAsRead(ctx context.Context, connectionID, receiverID string) error
	DeleteMessage(ctx context.Context, baseChatID, messageID, userID string) error
	Refresh(ctx context.Context, baseChatID string) error
}

// ChatMessageRepo mirrors messages between remote and cache.
type ChatMessageRepo struct {
	messages MessageStore
	conns    ConnectionStore
	chats    ChatStore
	store    *cache.Store
	log      *zap.Logger
}

// NewChatMessageRepo constructs a ChatMessageRepo.
func NewChatMessageRepo(messages MessageStore, conns ConnectionStore, chats ChatStore, store *cache.Store, log *zap.Logger) *ChatMessageRepo {
	return &ChatMessageRepo{messages: messages, conns: conns, chats: chats, store: store, log: log.Named("messages")}
}

// SendMessage delivers msg from msg.SenderID to msg.ReceiverID over their
// accepted connection. The message is cached as SENDING first, written
// remotely, then cached as SENT. If the remote write fails the cached row
// becomes FAILED and the error is returned with the failed message.
func (r *ChatMessageRepo) SendMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "ChatMessageRepo.SendMessage")
	defer span.End()

	if msg.Type == "" {
		msg.Type = models.MessageText
	}
	if !msg.Type.Valid() {
		return models.ChatMessage{}, fmt.Errorf("%w: message type %q", mapper.ErrUnknownValue, msg.Type)
	}

	doc, err := r.conns.FindConnection(ctx, msg.SenderID, msg.ReceiverID)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.ChatMessage{}, models.ErrConnectionNotFound
	}
	if err != nil {
		remoteFailed(span, "find_connection", err)
		return models.ChatMessage{}, err
	}
	if models.ConnectionStatus(doc.Status) != models.ConnectionAccepted {
		return models.ChatMessage{}, models.ErrConnectionNotActive
	}

	msg.ID = uuid.NewString()
	msg.BaseChatID = models.BaseChatID(msg.SenderID, msg.ReceiverID)
	if msg.ChatID == "" {
		msg.ChatID = models.ChatCopyID(msg.BaseChatID, msg.SenderID)
	}
	msg.Timestamp = now()
	msg.Status = models.StatusSending
	if err := r.store.Messages().Upsert(ctx, mapper.MessageToEntity(msg)); err != nil {
		return models.ChatMessage{}, err
	}

	sent := msg
	sent.Status = models.StatusSent
	stored, err := r.messages.InsertMessage(ctx, mapper.MessageToDocument(sent))
	if err != nil {
		remoteFailed(span, "insert_message", err)
		r.log.Error("send message failed", zap.String("message_id", msg.ID), zap.Error(err))
		msg.Status = models.StatusFailed
		if cerr := r.store.Messages().UpdateStatus(ctx, msg.ID, string(models.StatusFailed)); cerr != nil {
			r.log.Warn("mark message failed", zap.String("message_id", msg.ID), zap.Error(cerr))
		}
		return msg, err
	}

	confirmed, err := mapper.MessageFromDocument(stored)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if err := r.store.Messages().Upsert(ctx, mapper.MessageToEntity(confirmed)); err != nil {
		return models.ChatMessage{}, err
	}
	if err := r.store.Chats().ApplyMessage(ctx, confirmed.BaseChatID, confirmed.ReceiverID, confirmed.Content, confirmed.Timestamp.UnixMilli()); err != nil {
		r.log.Warn("update cached chat summary failed", zap.String("base_chat_id", confirmed.BaseChatID), zap.Error(err))
	}
	return confirmed, nil
}

// GetMessages returns the latest messages of a conversation from the remote
// store, or the cached ones when the remote store is unreachable.
func (r *ChatMessageRepo) GetMessages(ctx context.Context, baseChatID string, limit int) ([]models.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "ChatMessageRepo.GetMessages")
	defer span.End()

	if limit <= 0 {
		limit = DefaultMessageWindow
	}
	docs, err := r.messages.ListMessages(ctx, baseChatID, limit)
	if err != nil {
		remoteFailed(span, "list_messages", err)
		r.log.Warn("serving cached messages", zap.String("base_chat_id", baseChatID), zap.Error(err))
		observability.IncCacheFallback("list_messages")
		return r.cachedMessages(ctx, baseChatID)
	}

	msgs := make([]models.ChatMessage, 0, len(docs))
	for _, doc := range docs {
		m, err := mapper.MessageFromDocument(doc)
		if err != nil {
			r.log.Warn("skipping message", zap.String("message_id", doc.ID), zap.Error(err))
			continue
		}
		msgs = append(msgs, m)
	}
	entities := make([]cache.ChatMessageEntity, len(msgs))
	for i, m := range msgs {
		entities[i] = mapper.MessageToEntity(m)
	}
	if err := r.store.Messages().ReplaceWindow(ctx, baseChatID, windowStart(len(docs), limit, entities), entities); err != nil {
		r.log.Warn("cache messages failed", zap.String("base_chat_id", baseChatID), zap.Error(err))
	}
	return msgs, nil
}

// ObserveMessages streams the cached messages of a conversation in order.
func (r *ChatMessageRepo) ObserveMessages(ctx context.Context, baseChatID string) *stream.Stream[[]models.ChatMessage] {
	fetch := func(ctx context.Context) ([]models.ChatMessage, error) {
		return r.cachedMessages(ctx, baseChatID)
	}
	refresh := func(ctx context.Context) error { return r.Refresh(ctx, baseChatID) }
	return observeWithRefresh(ctx, r.store, r.log, "observe_messages", fetch, refresh, cache.TableMessages)
}

// UpdateMessageStatus moves a message forward in its lifecycle. Backward
// moves fail with ErrInvalidStatusTransition.
func (r *ChatMessageRepo) UpdateMessageStatus(ctx context.Context, baseChatID, messageID, userID string, status models.MessageStatus) error {
	ctx, span := tracer.Start(ctx, "ChatMessageRepo.UpdateMessageStatus")
	defer span.End()

	if !status.Valid() {
		return fmt.Errorf("%w: message status %q", mapper.ErrUnknownValue, status)
	}
	doc, err := r.messages.GetMessage(ctx, baseChatID, messageID)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.ErrMessageNotFound
	}
	if err != nil {
		remoteFailed(span, "get_message", err)
		return err
	}
	// delivery and read receipts come from the receiver, anything else
	// from the sender
	owner := doc.SenderID
	if status == models.StatusDelivered || status == models.StatusRead {
		owner = doc.ReceiverID
	}
	if userID != owner {
		return models.ErrNotParticipant
	}
	current := models.MessageStatus(doc.Status)
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, current, status)
	}
	if current == status {
		return nil
	}

	if err := r.messages.UpdateMessageStatus(ctx, baseChatID, messageID, string(status)); err != nil {
		remoteFailed(span, "update_message_status", err)
		r.log.Error("update message status failed", zap.String("message_id", messageID), zap.Error(err))
		return err
	}
	return r.store.Messages().UpdateStatus(ctx, messageID, string(status))
}

// MarkMessagesAsRead marks every message receiverID has received over the
// connection as READ and zeroes receiverID's unread counter. Calling it
// again is harmless.
func (r *ChatMessageRepo) MarkMessagesAsRead(ctx context.Context, connectionID, receiverID string) error {
	ctx, span := tracer.Start(ctx, "ChatMessageRepo.MarkMessagesAsRead")
	defer span.End()

	doc, err := r.conns.GetConnection(ctx, connectionID)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.ErrConnectionNotFound
	}
	if err != nil {
		remoteFailed(span, "get_connection", err)
		return err
	}
	if doc.User1ID != receiverID && doc.User2ID != receiverID {
		return models.ErrNotParticipant
	}
	base := models.BaseChatID(doc.User1ID, doc.User2ID)

	n, err := r.messages.MarkMessagesRead(ctx, base, receiverID)
	if err != nil {
		remoteFailed(span, "mark_messages_read", err)
		return err
	}
	if err := r.chats.ResetUnreadCount(ctx, connectionID, receiverID); err != nil {
		remoteFailed(span, "reset_unread", err)
		return err
	}
	r.log.Debug("messages read", zap.String("base_chat_id", base), zap.String("receiver_id", receiverID), zap.Int64("count", n))

	if err := r.store.Messages().MarkRead(ctx, base, receiverID); err != nil {
		return err
	}
	return r.store.Chats().ResetUnread(ctx, connectionID, receiverID)
}

// DeleteMessage removes a message sent by userID.
func (r *ChatMessageRepo) DeleteMessage(ctx context.Context, baseChatID, messageID, userID string) error {
	ctx, span := tracer.Start(ctx, "ChatMessageRepo.DeleteMessage")
	defer span.End()

	doc, err := r.messages.GetMessage(ctx, baseChatID, messageID)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.ErrMessageNotFound
	}
	if err != nil {
		remoteFailed(span, "get_message", err)
		return err
	}
	if doc.SenderID != userID {
		return models.ErrNotParticipant
	}
	if err := r.messages.DeleteMessage(ctx, baseChatID, messageID); err != nil && !errors.Is(err, remote.ErrDocumentNotFound) {
		remoteFailed(span, "delete_message", err)
		r.log.Error("delete message failed", zap.String("message_id", messageID), zap.Error(err))
		return err
	}
	return r.store.Messages().Delete(ctx, messageID)
}

// Refresh pulls the latest window of a conversation into the cache. Cached
// messages inside the window that the remote no longer has are dropped; a
// short window means the whole conversation was pulled.
func (r *ChatMessageRepo) Refresh(ctx context.Context, baseChatID string) error {
	ctx, span := tracer.Start(ctx, "ChatMessageRepo.Refresh")
	defer span.End()

	docs, err := r.messages.ListMessages(ctx, baseChatID, DefaultMessageWindow)
	if err != nil {
		remoteFailed(span, "list_messages", err)
		return err
	}
	entities := make([]cache.ChatMessageEntity, 0, len(docs))
	for _, doc := range docs {
		e, err := mapper.MessageDocumentToEntity(doc)
		if err != nil {
			r.log.Warn("skipping message", zap.String("message_id", doc.ID), zap.Error(err))
			continue
		}
		entities = append(entities, e)
	}
	return r.store.Messages().ReplaceWindow(ctx, baseChatID, windowStart(len(docs), DefaultMessageWindow, entities), entities)
}

// windowStart is the oldest timestamp covered by a pull of limit messages
// that returned pulled documents. A short pull covers the whole history.
func windowStart(pulled, limit int, entities []cache.ChatMessageEntity) int64 {
	if pulled < limit {
		return 0
	}
	since := int64(math.MaxInt64)
	for _, e := range entities {
		since = min(since, e.Timestamp)
	}
	return since
}

func (r *ChatMessageRepo) cachedMessages(ctx context.Context, baseChatID string) ([]models.ChatMessage, error) {
	entities, err := r.store.Messages().ListByBaseChat(ctx, baseChatID)
	if err != nil {
		return nil, err
	}
	msgs := make([]models.ChatMessage, 0, len(entities))
	for _, e := range entities {
		m, err := mapper.MessageFromEntity(e)
		if err != nil {
			r.log.Warn("skipping cached message", zap.String("message_id", e.ID), zap.Error(err))
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
