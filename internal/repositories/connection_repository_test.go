package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bondhub/internal/cache"
	"bondhub/internal/mocks"
	"bondhub/internal/models"
	"bondhub/internal/remote"
	"bondhub/internal/repositories"
)

func TestSendConnectionRequestIsUniquePerPair(t *testing.T) {
	store := openCache(t)
	conns := new(mocks.ConnectionStoreMock)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewChatConnectionRepo(conns, users, store, zap.NewNop())
	ctx := context.Background()

	users.On("GetUser", mock.Anything, mock.Anything).Return(remote.UserDocument{ID: "someone"}, nil)
	conns.On("FindConnection", mock.Anything, "alice", "bob").Return(nil, remote.ErrDocumentNotFound).Once()
	conns.On("CreateConnection", mock.Anything, mock.AnythingOfType("remote.ConnectionDocument")).
		Return(func(doc remote.ConnectionDocument) remote.ConnectionDocument { return doc }, nil).Once()

	conn, err := repo.SendConnectionRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, "alice", conn.InitiatorID)

	stored := remote.ConnectionDocument{ID: conn.ID, User1ID: "alice", User2ID: "bob", InitiatorID: "alice", Status: "PENDING"}
	conns.On("FindConnection", mock.Anything, "alice", "bob").Return(stored, nil)
	conns.On("FindConnection", mock.Anything, "bob", "alice").Return(stored, nil)

	_, err = repo.SendConnectionRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, models.ErrConnectionExists)
	_, err = repo.SendConnectionRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, models.ErrConnectionExists)

	cached, err := store.Connections().ListForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, cached, 1)
	conns.AssertNumberOfCalls(t, "CreateConnection", 1)
}

func TestSendConnectionRequestOrdersPair(t *testing.T) {
	store := openCache(t)
	conns := new(mocks.ConnectionStoreMock)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewChatConnectionRepo(conns, users, store, zap.NewNop())

	users.On("GetUser", mock.Anything, "alice").Return(remote.UserDocument{ID: "alice"}, nil)
	conns.On("FindConnection", mock.Anything, "zed", "alice").Return(nil, remote.ErrDocumentNotFound)
	conns.On("CreateConnection", mock.Anything, mock.MatchedBy(func(doc remote.ConnectionDocument) bool {
		return doc.User1ID == "alice" && doc.User2ID == "zed" && doc.InitiatorID == "zed"
	})).Return(func(doc remote.ConnectionDocument) remote.ConnectionDocument { return doc }, nil)

	_, err := repo.SendConnectionRequest(context.Background(), "zed", "alice")
	require.NoError(t, err)
	conns.AssertExpectations(t)
}

func TestSendConnectionRequestPreconditions(t *testing.T) {
	store := openCache(t)
	conns := new(mocks.ConnectionStoreMock)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewChatConnectionRepo(conns, users, store, zap.NewNop())
	users.On("GetUser", mock.Anything, "ghost").Return(nil, remote.ErrDocumentNotFound)
	users.On("GetUser", mock.Anything, "bob").Return(remote.UserDocument{ID: "bob"}, nil)
	conns.On("FindConnection", mock.Anything, "alice", "bob").Return(nil, remote.ErrDocumentNotFound)
	conns.On("CreateConnection", mock.Anything, mock.Anything).Return(nil, remote.ErrDuplicateDocument)

	_, err := repo.SendConnectionRequest(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, models.ErrSelfConnection)
	_, err = repo.SendConnectionRequest(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, models.ErrUserProfileNotFound)
	_, err = repo.SendConnectionRequest(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, models.ErrConnectionExists)
}

func TestAcceptConnectionRequest(t *testing.T) {
	store := openCache(t)
	conns := new(mocks.ConnectionStoreMock)
	repo := repositories.NewChatConnectionRepo(conns, new(mocks.UserStoreMock), store, zap.NewNop())
	ctx := context.Background()

	pending := remote.ConnectionDocument{ID: "c1", User1ID: "alice", User2ID: "bob", InitiatorID: "alice", Status: "PENDING"}
	conns.On("GetConnection", mock.Anything, "c1").Return(pending, nil)
	conns.On("UpdateConnectionStatus", mock.Anything, "c1", "ACCEPTED", mock.Anything).Return(nil).Once()

	_, err := repo.AcceptConnectionRequest(ctx, "c1", "alice")
	assert.ErrorIs(t, err, models.ErrNotParticipant)

	conn, err := repo.AcceptConnectionRequest(ctx, "c1", "bob")
	require.NoError(t, err)
	assert.True(t, conn.Active())

	cached, err := store.Connections().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", cached.Status)
	conns.AssertExpectations(t)
}

func TestRejectConnectionRequestDeletesRemoteThenLocal(t *testing.T) {
	store := openCache(t)
	conns := new(mocks.ConnectionStoreMock)
	repo := repositories.NewChatConnectionRepo(conns, new(mocks.UserStoreMock), store, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, store.Connections().Upsert(ctx, cache.ChatConnectionEntity{ID: "c1", User1ID: "alice", User2ID: "bob", InitiatorID: "alice", Status: "PENDING"}))

	pending := remote.ConnectionDocument{ID: "c1", User1ID: "alice", User2ID: "bob", InitiatorID: "alice", Status: "PENDING"}
	conns.On("GetConnection", mock.Anything, "c1").Return(pending, nil)
	conns.On("DeleteConnection", mock.Anything, "c1").Return(errors.New("offline")).Once()
	conns.On("DeleteConnection", mock.Anything, "c1").Return(nil).Once()

	require.Error(t, repo.RejectConnectionRequest(ctx, "c1", "bob"))
	_, err := store.Connections().Get(ctx, "c1")
	require.NoError(t, err, "cached row survives a failed remote delete")

	require.NoError(t, repo.RejectConnectionRequest(ctx, "c1", "bob"))
	_, err = store.Connections().Get(ctx, "c1")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestObservePendingRequestsServesCacheWhenOffline(t *testing.T) {
	store := openCache(t)
	conns := new(mocks.ConnectionStoreMock)
	repo := repositories.NewChatConnectionRepo(conns, new(mocks.UserStoreMock), store, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.Connections().Upsert(ctx, cache.ChatConnectionEntity{ID: "c1", User1ID: "alice", User2ID: "bob", InitiatorID: "alice", Status: "PENDING"}))
	require.NoError(t, store.Connections().Upsert(ctx, cache.ChatConnectionEntity{ID: "c2", User1ID: "bob", User2ID: "carol", InitiatorID: "bob", Status: "PENDING"}))
	conns.On("ListConnections", mock.Anything, "bob").Return(nil, errors.New("offline"))

	s := repo.ObservePendingRequests(ctx, "bob")
	defer s.Close()
	got := waitFor(t, s, func(list []models.ChatConnection) bool { return len(list) == 1 })
	assert.Equal(t, "c1", got[0].ID)
}
