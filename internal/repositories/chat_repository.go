package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bondhub/internal/cache"
	"bondhub/internal/mapper"
	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/remote"
	"bondhub/internal/stream"
)

// ChatRepository manages the per-user chat summaries.
type ChatRepository interface {
	CreateChatsForConnection(ctx context.Context, conn models.ChatConnection) ([]models.Chat, error)
	GetChat(ctx context.Context, chatID, userID string) (models.Chat, error)
	ObserveChats(ctx context.Context, ownerID string) *stream.Stream[[]models.Chat]
	DeleteChat(ctx context.Context, chatID, userID string) error
	Refresh(ctx context.Context, ownerID string) error
}

// ChatRepo mirrors chats between remote and cache.
type ChatRepo struct {
	chats ChatStore
	users UserStore
	store *cache.Store
	log   *zap.Logger
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(chats ChatStore, users UserStore, store *cache.Store, log *zap.Logger) *ChatRepo {
	return &ChatRepo{chats: chats, users: users, store: store, log: log.Named("chats")}
}

// CreateChatsForConnection creates one chat copy per participant of an
// accepted connection. Both copies share the base chat id; each shows the
// other participant's name and thumbnail. Existing copies are kept.
func (r *ChatRepo) CreateChatsForConnection(ctx context.Context, conn models.ChatConnection) ([]models.Chat, error) {
	ctx, span := tracer.Start(ctx, "ChatRepo.CreateChatsForConnection")
	defer span.End()

	if !conn.Active() {
		return nil, models.ErrConnectionNotActive
	}
	participants := []string{conn.User1ID, conn.User2ID}
	docs, err := r.users.GetUsers(ctx, participants)
	if err != nil {
		remoteFailed(span, "get_users", err)
		return nil, err
	}
	profiles := make(map[string]remote.UserDocument, len(docs))
	for _, doc := range docs {
		profiles[doc.ID] = doc
	}

	base := models.BaseChatID(conn.User1ID, conn.User2ID)
	created := make([]models.Chat, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	for i, owner := range participants {
		other := profiles[conn.OtherUser(owner)]
		chat := models.Chat{
			ID:             models.ChatCopyID(base, owner),
			BaseChatID:     base,
			ConnectionID:   conn.ID,
			OwnerID:        owner,
			ParticipantIDs: participants,
			DisplayName:    other.DisplayName,
			ThumbnailURL:   other.ProfilePictureThumbnailURL.String,
		}
		g.Go(func() error {
			stored, err := r.chats.CreateChat(gctx, mapper.ChatToDocument(chat))
			if err != nil {
				return err
			}
			created[i] = mapper.ChatFromDocument(stored)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		remoteFailed(span, "create_chat", err)
		r.log.Error("create chats failed", zap.String("connection_id", conn.ID), zap.Error(err))
		return nil, err
	}

	for _, chat := range created {
		if err := r.store.Chats().Upsert(ctx, mapper.ChatToEntity(chat)); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// GetChat reads userID's chat copy, falling back to the cache when the
// remote store is unreachable.
func (r *ChatRepo) GetChat(ctx context.Context, chatID, userID string) (models.Chat, error) {
	ctx, span := tracer.Start(ctx, "ChatRepo.GetChat")
	defer span.End()

	doc, err := r.chats.GetChat(ctx, chatID)
	var chat models.Chat
	switch {
	case err == nil:
		chat = mapper.ChatFromDocument(doc)
		if err := r.store.Chats().Upsert(ctx, mapper.ChatToEntity(chat)); err != nil {
			r.log.Warn("cache chat failed", zap.String("chat_id", chatID), zap.Error(err))
		}
	case errors.Is(err, remote.ErrDocumentNotFound):
		return models.Chat{}, models.ErrChatNotFound
	default:
		remoteFailed(span, "get_chat", err)
		e, cerr := r.store.Chats().Get(ctx, chatID)
		if cerr != nil {
			return models.Chat{}, err
		}
		observability.IncCacheFallback("get_chat")
		chat = mapper.ChatFromEntity(e)
	}

	if chat.OwnerID != userID {
		return models.Chat{}, models.ErrNotParticipant
	}
	return chat, nil
}

// ObserveChats streams the owner's cached chats, most recent first.
func (r *ChatRepo) ObserveChats(ctx context.Context, ownerID string) *stream.Stream[[]models.Chat] {
	fetch := func(ctx context.Context) ([]models.Chat, error) {
		entities, err := r.store.Chats().ListForOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		chats := make([]models.Chat, len(entities))
		for i, e := range entities {
			chats[i] = mapper.ChatFromEntity(e)
		}
		return chats, nil
	}
	refresh := func(ctx context.Context) error { return r.Refresh(ctx, ownerID) }
	return observeWithRefresh(ctx, r.store, r.log, "observe_chats", fetch, refresh, cache.TableChats)
}

// DeleteChat removes userID's copy of a chat. The other participant's copy
// and the messages are untouched.
func (r *ChatRepo) DeleteChat(ctx context.Context, chatID, userID string) error {
	ctx, span := tracer.Start(ctx, "ChatRepo.DeleteChat")
	defer span.End()

	doc, err := r.chats.GetChat(ctx, chatID)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.ErrChatNotFound
	}
	if err != nil {
		remoteFailed(span, "get_chat", err)
		return err
	}
	if doc.OwnerID != userID {
		return models.ErrNotParticipant
	}
	if err := r.chats.DeleteChat(ctx, chatID); err != nil && !errors.Is(err, remote.ErrDocumentNotFound) {
		remoteFailed(span, "delete_chat", err)
		r.log.Error("delete chat failed", zap.String("chat_id", chatID), zap.Error(err))
		return err
	}
	return r.store.Chats().Delete(ctx, chatID)
}

// Refresh replaces the owner's cached chats with the remote ones.
func (r *ChatRepo) Refresh(ctx context.Context, ownerID string) error {
	ctx, span := tracer.Start(ctx, "ChatRepo.Refresh")
	defer span.End()

	docs, err := r.chats.ListChats(ctx, ownerID)
	if err != nil {
		remoteFailed(span, "list_chats", err)
		return err
	}
	entities := make([]cache.ChatEntity, len(docs))
	for i, doc := range docs {
		entities[i] = mapper.ChatDocumentToEntity(doc)
	}
	return r.store.Chats().ReplaceForOwner(ctx, ownerID, entities)
}
