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

type messageFixture struct {
	store *cache.Store
	msgs  *mocks.MessageStoreMock
	conns *mocks.ConnectionStoreMock
	chats *mocks.ChatStoreMock
	repo  *repositories.ChatMessageRepo
}

func newMessageFixture(t *testing.T) messageFixture {
	f := messageFixture{
		store: openCache(t),
		msgs:  new(mocks.MessageStoreMock),
		conns: new(mocks.ConnectionStoreMock),
		chats: new(mocks.ChatStoreMock),
	}
	f.repo = repositories.NewChatMessageRepo(f.msgs, f.conns, f.chats, f.store, zap.NewNop())
	return f
}

func acceptedConnection() remote.ConnectionDocument {
	return remote.ConnectionDocument{ID: "c1", User1ID: "alice", User2ID: "bob", InitiatorID: "alice", Status: "ACCEPTED"}
}

func TestSendMessageMovesFromSendingToSent(t *testing.T) {
	f := newMessageFixture(t)
	base := models.BaseChatID("alice", "bob")

	release := make(chan struct{})
	f.conns.On("FindConnection", mock.Anything, "alice", "bob").Return(acceptedConnection(), nil)
	f.msgs.On("ListMessages", mock.Anything, base, repositories.DefaultMessageWindow).Return([]remote.MessageDocument{}, nil)
	f.msgs.On("InsertMessage", mock.Anything, mock.AnythingOfType("remote.MessageDocument")).
		Run(func(mock.Arguments) { <-release }).
		Return(func(doc remote.MessageDocument) remote.MessageDocument { return doc }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := f.repo.ObserveMessages(ctx, base)
	defer s.Close()
	waitFor(t, s, func(list []models.ChatMessage) bool { return len(list) == 0 })

	type result struct {
		msg models.ChatMessage
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := f.repo.SendMessage(ctx, models.ChatMessage{SenderID: "alice", ReceiverID: "bob", Content: "hi"})
		done <- result{msg, err}
	}()

	pending := waitFor(t, s, func(list []models.ChatMessage) bool { return len(list) == 1 })
	assert.Equal(t, models.StatusSending, pending[0].Status)
	assert.Equal(t, base, pending[0].BaseChatID)

	close(release)
	sent := waitFor(t, s, func(list []models.ChatMessage) bool {
		return len(list) == 1 && list[0].Status == models.StatusSent
	})
	assert.Equal(t, "hi", sent[0].Content)
	assert.Equal(t, models.MessageText, sent[0].Type)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, sent[0].ID, res.msg.ID)
	assert.Equal(t, models.ChatCopyID(base, "alice"), res.msg.ChatID)
}

func TestSendMessageMarksFailedOnRemoteError(t *testing.T) {
	f := newMessageFixture(t)
	f.conns.On("FindConnection", mock.Anything, "alice", "bob").Return(acceptedConnection(), nil)
	f.msgs.On("InsertMessage", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	msg, err := f.repo.SendMessage(context.Background(), models.ChatMessage{SenderID: "alice", ReceiverID: "bob", Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, msg.Status)

	cached, err := f.store.Messages().Get(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAILED", cached.Status)
}

func TestSendMessageRequiresAcceptedConnection(t *testing.T) {
	f := newMessageFixture(t)
	pending := acceptedConnection()
	pending.Status = "PENDING"
	f.conns.On("FindConnection", mock.Anything, "alice", "bob").Return(pending, nil)
	f.conns.On("FindConnection", mock.Anything, "alice", "carol").Return(nil, remote.ErrDocumentNotFound)

	_, err := f.repo.SendMessage(context.Background(), models.ChatMessage{SenderID: "alice", ReceiverID: "bob", Content: "hi"})
	assert.ErrorIs(t, err, models.ErrConnectionNotActive)

	_, err = f.repo.SendMessage(context.Background(), models.ChatMessage{SenderID: "alice", ReceiverID: "carol", Content: "hi"})
	assert.ErrorIs(t, err, models.ErrConnectionNotFound)
	f.msgs.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestMarkMessagesAsReadIsIdempotent(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	base := models.BaseChatID("alice", "bob")

	require.NoError(t, f.store.Chats().Upsert(ctx, cache.ChatEntity{
		ID: models.ChatCopyID(base, "bob"), BaseChatID: base, ConnectionID: "c1", OwnerID: "bob",
		ParticipantIDs: cache.IDList{"alice", "bob"}, UnreadCount: 2,
	}))
	require.NoError(t, f.store.Messages().UpsertAll(ctx, []cache.ChatMessageEntity{
		{ID: "m1", BaseChatID: base, SenderID: "alice", ReceiverID: "bob", Content: "1", Timestamp: 1, Type: "TEXT", Status: "SENT"},
		{ID: "m2", BaseChatID: base, SenderID: "alice", ReceiverID: "bob", Content: "2", Timestamp: 2, Type: "TEXT", Status: "DELIVERED"},
	}))

	f.conns.On("GetConnection", mock.Anything, "c1").Return(acceptedConnection(), nil)
	f.msgs.On("MarkMessagesRead", mock.Anything, base, "bob").Return(2, nil).Once()
	f.msgs.On("MarkMessagesRead", mock.Anything, base, "bob").Return(0, nil).Once()
	f.chats.On("ResetUnreadCount", mock.Anything, "c1", "bob").Return(nil).Twice()

	require.NoError(t, f.repo.MarkMessagesAsRead(ctx, "c1", "bob"))
	require.NoError(t, f.repo.MarkMessagesAsRead(ctx, "c1", "bob"))

	chat, err := f.store.Chats().Get(ctx, models.ChatCopyID(base, "bob"))
	require.NoError(t, err)
	assert.Equal(t, 0, chat.UnreadCount)

	msgs, err := f.store.Messages().ListByBaseChat(ctx, base)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.Equal(t, "READ", m.Status)
	}
	f.msgs.AssertExpectations(t)
	f.chats.AssertExpectations(t)
}

func TestMarkMessagesAsReadLeavesCacheOnRemoteFailure(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	base := models.BaseChatID("alice", "bob")
	require.NoError(t, f.store.Messages().Upsert(ctx, cache.ChatMessageEntity{
		ID: "m1", BaseChatID: base, SenderID: "alice", ReceiverID: "bob", Type: "TEXT", Status: "SENT", Timestamp: 1,
	}))

	f.conns.On("GetConnection", mock.Anything, "c1").Return(acceptedConnection(), nil)
	f.msgs.On("MarkMessagesRead", mock.Anything, base, "bob").Return(0, errors.New("timeout"))

	require.Error(t, f.repo.MarkMessagesAsRead(ctx, "c1", "bob"))
	m, err := f.store.Messages().Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "SENT", m.Status)
}

func TestMarkMessagesAsReadRejectsOutsider(t *testing.T) {
	f := newMessageFixture(t)
	f.conns.On("GetConnection", mock.Anything, "c1").Return(acceptedConnection(), nil)
	assert.ErrorIs(t, f.repo.MarkMessagesAsRead(context.Background(), "c1", "mallory"), models.ErrNotParticipant)
}

func TestUpdateMessageStatusIsMonotonic(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	f.msgs.On("GetMessage", mock.Anything, "alice_bob", "m1").
		Return(remote.MessageDocument{ID: "m1", BaseChatID: "alice_bob", SenderID: "alice", ReceiverID: "bob", Type: "TEXT", Status: "READ"}, nil)
	f.msgs.On("GetMessage", mock.Anything, "alice_bob", "m2").
		Return(remote.MessageDocument{ID: "m2", BaseChatID: "alice_bob", SenderID: "alice", ReceiverID: "bob", Type: "TEXT", Status: "SENT"}, nil)
	f.msgs.On("UpdateMessageStatus", mock.Anything, "alice_bob", "m2", "DELIVERED").Return(nil)

	err := f.repo.UpdateMessageStatus(ctx, "alice_bob", "m1", "alice", models.StatusSent)
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)

	require.NoError(t, f.repo.UpdateMessageStatus(ctx, "alice_bob", "m2", "bob", models.StatusDelivered))
	f.msgs.AssertExpectations(t)
}

func TestUpdateMessageStatusReceiptsOnlyFromReceiver(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	f.msgs.On("GetMessage", mock.Anything, "alice_bob", "m1").
		Return(remote.MessageDocument{ID: "m1", BaseChatID: "alice_bob", SenderID: "alice", ReceiverID: "bob", Type: "TEXT", Status: "SENT"}, nil)

	for _, status := range []models.MessageStatus{models.StatusDelivered, models.StatusRead} {
		err := f.repo.UpdateMessageStatus(ctx, "alice_bob", "m1", "alice", status)
		assert.ErrorIs(t, err, models.ErrNotParticipant, status)
	}
	assert.ErrorIs(t, f.repo.UpdateMessageStatus(ctx, "alice_bob", "m1", "bob", models.StatusFailed), models.ErrNotParticipant)
	f.msgs.AssertNotCalled(t, "UpdateMessageStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMessagesFallsBackToCache(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Messages().Upsert(ctx, cache.ChatMessageEntity{
		ID: "m1", BaseChatID: "alice_bob", SenderID: "alice", ReceiverID: "bob", Content: "cached", Type: "TEXT", Status: "SENT", Timestamp: 1,
	}))
	f.msgs.On("ListMessages", mock.Anything, "alice_bob", 50).Return(nil, errors.New("offline"))

	msgs, err := f.repo.GetMessages(ctx, "alice_bob", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "cached", msgs[0].Content)
}

func TestDeleteMessageOnlyBySender(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Messages().Upsert(ctx, cache.ChatMessageEntity{
		ID: "m1", BaseChatID: "alice_bob", SenderID: "alice", ReceiverID: "bob", Type: "TEXT", Status: "SENT", Timestamp: 1,
	}))
	f.msgs.On("GetMessage", mock.Anything, "alice_bob", "m1").
		Return(remote.MessageDocument{ID: "m1", BaseChatID: "alice_bob", SenderID: "alice", Type: "TEXT", Status: "SENT"}, nil)
	f.msgs.On("DeleteMessage", mock.Anything, "alice_bob", "m1").Return(nil)

	assert.ErrorIs(t, f.repo.DeleteMessage(ctx, "alice_bob", "m1", "bob"), models.ErrNotParticipant)
	require.NoError(t, f.repo.DeleteMessage(ctx, "alice_bob", "m1", "alice"))

	_, err := f.store.Messages().Get(ctx, "m1")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRefreshDropsMessagesDeletedRemotely(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Messages().Upsert(ctx, cache.ChatMessageEntity{
		ID: "m1", BaseChatID: "alice_bob", SenderID: "alice", ReceiverID: "bob", Content: "oops", Type: "TEXT", Status: "SENT", Timestamp: 1,
	}))
	f.msgs.On("ListMessages", mock.Anything, "alice_bob", repositories.DefaultMessageWindow).
		Return([]remote.MessageDocument{}, nil)

	require.NoError(t, f.repo.Refresh(ctx, "alice_bob"))

	list, err := f.store.Messages().ListByBaseChat(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Empty(t, list)
}
