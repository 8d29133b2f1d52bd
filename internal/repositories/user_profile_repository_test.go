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
	"bondhub/internal/stream"
)

func TestGetProfileFallsBackToCache(t *testing.T) {
	store := openCache(t)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewUserProfileRepo(users, store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Profiles().Upsert(ctx, cache.UserProfileEntity{ID: "alice", Email: "a@x.io", DisplayName: "Alice"}))
	users.On("GetUser", mock.Anything, "alice").Return(nil, errors.New("network down"))
	users.On("GetUser", mock.Anything, "ghost").Return(nil, errors.New("network down"))

	p, err := repo.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.DisplayName)

	_, err = repo.GetProfile(ctx, "ghost")
	assert.EqualError(t, err, "network down")
}

func TestObserveProfileSwallowsRemoteError(t *testing.T) {
	store := openCache(t)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewUserProfileRepo(users, store, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.Profiles().Upsert(ctx, cache.UserProfileEntity{ID: "alice", DisplayName: "Alice"}))
	users.On("GetUser", mock.Anything, "alice").Return(nil, errors.New("network down"))

	s := repo.ObserveProfile(ctx, "alice")
	got := waitFor(t, s, func(p *models.UserProfile) bool { return p != nil })
	assert.Equal(t, "Alice", got.DisplayName)
	s.Close()
	assert.NoError(t, s.Err())
}

func TestObserveProfileEmitsRemoteUpdate(t *testing.T) {
	store := openCache(t)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewUserProfileRepo(users, store, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users.On("GetUser", mock.Anything, "alice").Return(remote.UserDocument{ID: "alice", DisplayName: "Alice Remote"}, nil)

	s := repo.ObserveProfile(ctx, "alice")
	defer s.Close()
	got := waitFor(t, s, func(p *models.UserProfile) bool { return p != nil })
	assert.Equal(t, "Alice Remote", got.DisplayName)
}

type changeFeedFunc func(ctx context.Context) *stream.Stream[remote.Change]

func (f changeFeedFunc) Changes(ctx context.Context) *stream.Stream[remote.Change] { return f(ctx) }

func TestObserveProfileFollowsRemoteEdits(t *testing.T) {
	store := openCache(t)
	users := new(mocks.UserStoreMock)
	feed := changeFeedFunc(func(ctx context.Context) *stream.Stream[remote.Change] {
		return stream.Of(ctx,
			remote.Change{Collection: remote.CollectionUsers, Op: "UPDATE", ID: "carol", Keys: []string{"carol"}},
			remote.Change{Collection: remote.CollectionUsers, Op: "UPDATE", ID: "alice", Keys: []string{"alice"}},
		)
	})
	repo := repositories.NewUserProfileRepo(users, store, zap.NewNop()).WithChanges(feed)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users.On("GetUser", mock.Anything, "alice").Return(remote.UserDocument{ID: "alice", DisplayName: "Alice"}, nil).Once()
	users.On("GetUser", mock.Anything, "alice").Return(remote.UserDocument{ID: "alice", DisplayName: "Alice Renamed"}, nil).Once()

	s := repo.ObserveProfile(ctx, "alice")
	defer s.Close()
	got := waitFor(t, s, func(p *models.UserProfile) bool { return p != nil && p.DisplayName == "Alice Renamed" })
	assert.Equal(t, "alice", got.ID)
	users.AssertExpectations(t)
}

func TestGetProfileNotFound(t *testing.T) {
	users := new(mocks.UserStoreMock)
	repo := repositories.NewUserProfileRepo(users, openCache(t), zap.NewNop())
	users.On("GetUser", mock.Anything, "ghost").Return(nil, remote.ErrDocumentNotFound)

	_, err := repo.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrUserProfileNotFound)
}

func TestUpdateProfileWritesRemoteThenCache(t *testing.T) {
	store := openCache(t)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewUserProfileRepo(users, store, zap.NewNop())
	ctx := context.Background()

	users.On("GetUser", mock.Anything, "alice").Return(remote.UserDocument{ID: "alice"}, nil)
	users.On("UpsertUser", mock.Anything, mock.MatchedBy(func(doc remote.UserDocument) bool {
		return doc.ID == "alice" && doc.Bio.String == "hello"
	})).Return(nil)

	updated, err := repo.UpdateProfile(ctx, models.UserProfile{ID: "alice", DisplayName: "Alice", Bio: "hello", ProfileSetupComplete: true})
	require.NoError(t, err)
	assert.False(t, updated.LastUpdated.IsZero())

	cached, err := store.Profiles().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hello", cached.Bio)
	assert.True(t, cached.ProfileSetupComplete)
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	users := new(mocks.UserStoreMock)
	repo := repositories.NewUserProfileRepo(users, openCache(t), zap.NewNop())
	users.On("SearchUsers", mock.Anything, "al", 20).Return([]remote.UserDocument{
		{ID: "alice", DisplayName: "Alice"},
		{ID: "alan", DisplayName: "Alan"},
	}, nil)

	found, err := repo.SearchUsers(context.Background(), " al ", "alice", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alan", found[0].ID)

	empty, err := repo.SearchUsers(context.Background(), "  ", "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
