package livesync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"bondhub/internal/mocks"
	"bondhub/internal/remote"
	"bondhub/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type presence map[string]bool

func (p presence) IsActive(userID string) bool { return p[userID] }

type fixture struct {
	profiles *mocks.UserProfileRepositoryMock
	conns    *mocks.ConnectionRepositoryMock
	chats    *mocks.ChatRepositoryMock
	messages *mocks.MessageRepositoryMock
	syncer   *Syncer
}

func newFixture(active ...string) fixture {
	f := fixture{
		profiles: new(mocks.UserProfileRepositoryMock),
		conns:    new(mocks.ConnectionRepositoryMock),
		chats:    new(mocks.ChatRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
	}
	p := presence{}
	for _, id := range active {
		p[id] = true
	}
	f.syncer = NewSyncer(Repositories{
		Profiles:    f.profiles,
		Connections: f.conns,
		Chats:       f.chats,
		Messages:    f.messages,
	}, p, zap.NewNop())
	return f
}

func TestRunRefreshesOnlyActiveUsers(t *testing.T) {
	f := newFixture("alice")
	ctx := context.Background()

	f.conns.On("Refresh", mock.Anything, "alice").Return(nil).Once()
	f.chats.On("Refresh", mock.Anything, "alice").Return(nil).Once()
	f.messages.On("Refresh", mock.Anything, "alice_bob").Return(nil).Once()
	f.profiles.On("Refresh", mock.Anything, "alice").Return(errors.New("offline")).Once()

	changes := stream.Of(ctx,
		remote.Change{Collection: remote.CollectionConnections, Op: "UPDATE", ID: "c1", Keys: []string{"alice", "bob"}},
		remote.Change{Collection: remote.CollectionChats, Op: "UPDATE", ID: "alice_bob_alice", Keys: []string{"alice"}},
		remote.Change{Collection: remote.CollectionChats, Op: "UPDATE", ID: "alice_bob_bob", Keys: []string{"bob"}},
		remote.Change{Collection: remote.CollectionMessages, Op: "INSERT", ID: "m1", Keys: []string{"alice_bob", "bob", "alice"}},
		remote.Change{Collection: remote.CollectionMessages, Op: "INSERT", ID: "m2", Keys: []string{"bob_carol", "bob", "carol"}},
		remote.Change{Collection: remote.CollectionUsers, Op: "UPDATE", ID: "alice", Keys: []string{"alice"}},
		remote.Change{Collection: remote.CollectionUsers, Op: "UPDATE", ID: "bob", Keys: []string{"bob"}},
	)

	require.NoError(t, f.syncer.Run(ctx, changes))
	f.conns.AssertExpectations(t)
	f.chats.AssertExpectations(t)
	f.messages.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.chats.AssertNotCalled(t, "Refresh", mock.Anything, "bob")
	f.messages.AssertNotCalled(t, "Refresh", mock.Anything, "bob_carol")
}

func TestRunStopsWithContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	changes := stream.Start(ctx, func(ctx context.Context, emit func(remote.Change) bool) error {
		<-ctx.Done()
		return nil
	})
	defer changes.Close()

	cancel()
	require.NoError(t, f.syncer.Run(ctx, changes))
}

func TestRunReportsFeedFailure(t *testing.T) {
	f := newFixture()
	feedErr := errors.New("listener lost")

	err := f.syncer.Run(context.Background(), stream.Failed[remote.Change](context.Background(), feedErr))
	require.ErrorIs(t, err, feedErr)
}
