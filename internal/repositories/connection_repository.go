package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bondhub/internal/cache"
	"bondhub/internal/mapper"
	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/remote"
	"bondhub/internal/stream"
)

// ChatConnectionRepository manages friendship edges.
type ChatConnectionRepository interface {
	SendConnectionRequest(ctx context.Context, fromID, toID string) (models.ChatConnection, error)
	AcceptConnectionRequest(ctx context.Context, connectionID, userID string) (models.ChatConnection, error)
	RejectConnectionRequest(ctx context.Context, connectionID, userID string) error
	GetConnection(ctx context.Context, connectionID string) (models.ChatConnection, error)
	ObserveConnections(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection]
	ObservePendingRequests(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection]
	DeleteConnection(ctx context.Context, connectionID, userID string) error
	Refresh(ctx context.Context, userID string) error
}

// ChatConnectionRepo mirrors chat_connections between remote and cache.
type ChatConnectionRepo struct {
	conns ConnectionStore
	users UserStore
	store *cache.Store
	log   *zap.Logger
}

// NewChatConnectionRepo constructs a ChatConnectionRepo.
func NewChatConnectionRepo(conns ConnectionStore, users UserStore, store *cache.Store, log *zap.Logger) *ChatConnectionRepo {
	return &ChatConnectionRepo{conns: conns, users: users, store: store, log: log.Named("connections")}
}

// SendConnectionRequest opens a PENDING connection from fromID to toID.
// Any existing connection between the two, in either direction, fails with
// ErrConnectionExists.
func (r *ChatConnectionRepo) SendConnectionRequest(ctx context.Context, fromID, toID string) (models.ChatConnection, error) {
	ctx, span := tracer.Start(ctx, "ChatConnectionRepo.SendConnectionRequest")
	defer span.End()

	if fromID == toID {
		return models.ChatConnection{}, models.ErrSelfConnection
	}
	if _, err := r.users.GetUser(ctx, toID); err != nil {
		if errors.Is(err, remote.ErrDocumentNotFound) {
			return models.ChatConnection{}, models.ErrUserProfileNotFound
		}
		remoteFailed(span, "get_user", err)
		return models.ChatConnection{}, err
	}

	_, err := r.conns.FindConnection(ctx, fromID, toID)
	switch {
	case err == nil:
		return models.ChatConnection{}, models.ErrConnectionExists
	case !errors.Is(err, remote.ErrDocumentNotFound):
		remoteFailed(span, "find_connection", err)
		return models.ChatConnection{}, err
	}

	user1, user2 := models.OrderedPair(fromID, toID)
	at := now()
	stored, err := r.conns.CreateConnection(ctx, remote.ConnectionDocument{
		ID:                uuid.NewString(),
		User1ID:           user1,
		User2ID:           user2,
		InitiatorID:       fromID,
		Status:            string(models.ConnectionPending),
		CreatedAt:         at,
		LastInteractionAt: at,
	})
	if err != nil {
		if errors.Is(err, remote.ErrDuplicateDocument) {
			return models.ChatConnection{}, models.ErrConnectionExists
		}
		remoteFailed(span, "create_connection", err)
		r.log.Error("create connection failed", zap.String("from", fromID), zap.String("to", toID), zap.Error(err))
		return models.ChatConnection{}, err
	}

	conn, err := mapper.ConnectionFromDocument(stored)
	if err != nil {
		return models.ChatConnection{}, err
	}
	if err := r.store.Connections().Upsert(ctx, mapper.ConnectionToEntity(conn)); err != nil {
		return models.ChatConnection{}, err
	}
	return conn, nil
}

// AcceptConnectionRequest moves a PENDING request addressed to userID to
// ACCEPTED. Accepting an accepted connection is a no-op.
func (r *ChatConnectionRepo) AcceptConnectionRequest(ctx context.Context, connectionID, userID string) (models.ChatConnection, error) {
	ctx, span := tracer.Start(ctx, "ChatConnectionRepo.AcceptConnectionRequest")
	defer span.End()

	conn, err := r.fetch(ctx, connectionID)
	if err != nil {
		remoteFailed(span, "get_connection", err)
		return models.ChatConnection{}, err
	}
	if !conn.Involves(userID) || conn.InitiatorID == userID {
		return models.ChatConnection{}, models.ErrNotParticipant
	}
	if conn.Active() {
		return conn, nil
	}

	at := now()
	if err := r.conns.UpdateConnectionStatus(ctx, conn.ID, string(models.ConnectionAccepted), at); err != nil {
		remoteFailed(span, "update_connection_status", err)
		r.log.Error("accept connection failed", zap.String("connection_id", conn.ID), zap.Error(err))
		return models.ChatConnection{}, err
	}
	conn.Status = models.ConnectionAccepted
	conn.LastInteractionAt = at
	if err := r.store.Connections().Upsert(ctx, mapper.ConnectionToEntity(conn)); err != nil {
		return models.ChatConnection{}, err
	}
	return conn, nil
}

// RejectConnectionRequest removes a request addressed to userID. The remote
// document goes first; the cached row is removed only after that succeeds.
func (r *ChatConnectionRepo) RejectConnectionRequest(ctx context.Context, connectionID, userID string) error {
	ctx, span := tracer.Start(ctx, "ChatConnectionRepo.RejectConnectionRequest")
	defer span.End()

	conn, err := r.fetch(ctx, connectionID)
	if err != nil {
		remoteFailed(span, "get_connection", err)
		return err
	}
	if !conn.Involves(userID) || conn.InitiatorID == userID {
		return models.ErrNotParticipant
	}
	if conn.Active() {
		return models.ErrInvalidStatusTransition
	}
	return r.delete(ctx, span, conn.ID)
}

// GetConnection reads a connection remotely, falling back to the cache when
// the remote store is unreachable.
func (r *ChatConnectionRepo) GetConnection(ctx context.Context, connectionID string) (models.ChatConnection, error) {
	ctx, span := tracer.Start(ctx, "ChatConnectionRepo.GetConnection")
	defer span.End()

	conn, err := r.fetch(ctx, connectionID)
	if err == nil {
		if err := r.store.Connections().Upsert(ctx, mapper.ConnectionToEntity(conn)); err != nil {
			r.log.Warn("cache connection failed", zap.String("connection_id", connectionID), zap.Error(err))
		}
		return conn, nil
	}
	if errors.Is(err, models.ErrConnectionNotFound) || errors.Is(err, mapper.ErrUnknownValue) {
		return models.ChatConnection{}, err
	}
	remoteFailed(span, "get_connection", err)

	e, cerr := r.store.Connections().Get(ctx, connectionID)
	if cerr != nil {
		return models.ChatConnection{}, err
	}
	observability.IncCacheFallback("get_connection")
	return mapper.ConnectionFromEntity(e)
}

// ObserveConnections streams every cached connection touching userID.
func (r *ChatConnectionRepo) ObserveConnections(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection] {
	return r.observe(ctx, userID, "observe_connections", func(models.ChatConnection) bool { return true })
}

// ObservePendingRequests streams the PENDING requests userID has received.
func (r *ChatConnectionRepo) ObservePendingRequests(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection] {
	return r.observe(ctx, userID, "observe_pending_requests", func(c models.ChatConnection) bool {
		return c.Status == models.ConnectionPending && c.InitiatorID != userID
	})
}

// DeleteConnection removes a connection userID belongs to.
func (r *ChatConnectionRepo) DeleteConnection(ctx context.Context, connectionID, userID string) error {
	ctx, span := tracer.Start(ctx, "ChatConnectionRepo.DeleteConnection")
	defer span.End()

	conn, err := r.fetch(ctx, connectionID)
	if err != nil {
		remoteFailed(span, "get_connection", err)
		return err
	}
	if !conn.Involves(userID) {
		return models.ErrNotParticipant
	}
	return r.delete(ctx, span, conn.ID)
}

// Refresh replaces the cached connections of userID with the remote ones.
func (r *ChatConnectionRepo) Refresh(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "ChatConnectionRepo.Refresh")
	defer span.End()

	docs, err := r.conns.ListConnections(ctx, userID)
	if err != nil {
		remoteFailed(span, "list_connections", err)
		return err
	}
	entities := make([]cache.ChatConnectionEntity, 0, len(docs))
	for _, doc := range docs {
		e, err := mapper.ConnectionDocumentToEntity(doc)
		if err != nil {
			r.log.Warn("skipping connection", zap.String("connection_id", doc.ID), zap.Error(err))
			continue
		}
		entities = append(entities, e)
	}
	return r.store.Connections().ReplaceForUser(ctx, userID, entities)
}

func (r *ChatConnectionRepo) observe(ctx context.Context, userID, op string, keep func(models.ChatConnection) bool) *stream.Stream[[]models.ChatConnection] {
	fetch := func(ctx context.Context) ([]models.ChatConnection, error) {
		entities, err := r.store.Connections().ListForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		conns := make([]models.ChatConnection, 0, len(entities))
		for _, e := range entities {
			c, err := mapper.ConnectionFromEntity(e)
			if err != nil {
				r.log.Warn("skipping cached connection", zap.String("connection_id", e.ID), zap.Error(err))
				continue
			}
			if keep(c) {
				conns = append(conns, c)
			}
		}
		return conns, nil
	}
	refresh := func(ctx context.Context) error { return r.Refresh(ctx, userID) }
	return observeWithRefresh(ctx, r.store, r.log, op, fetch, refresh, cache.TableConnections)
}

func (r *ChatConnectionRepo) fetch(ctx context.Context, connectionID string) (models.ChatConnection, error) {
	doc, err := r.conns.GetConnection(ctx, connectionID)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.ChatConnection{}, models.ErrConnectionNotFound
	}
	if err != nil {
		return models.ChatConnection{}, err
	}
	return mapper.ConnectionFromDocument(doc)
}

func (r *ChatConnectionRepo) delete(ctx context.Context, span trace.Span, connectionID string) error {
	if err := r.conns.DeleteConnection(ctx, connectionID); err != nil && !errors.Is(err, remote.ErrDocumentNotFound) {
		remoteFailed(span, "delete_connection", err)
		r.log.Error("delete connection failed", zap.String("connection_id", connectionID), zap.Error(err))
		return err
	}
	return r.store.Connections().Delete(ctx, connectionID)
}
