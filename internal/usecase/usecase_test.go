package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bondhub/internal/mocks"
	"bondhub/internal/models"
)

func TestAcceptConnectionRequestOpensChats(t *testing.T) {
	conns := new(mocks.ConnectionRepositoryMock)
	chats := new(mocks.ChatRepositoryMock)
	accepted := models.ChatConnection{ID: "c1", User1ID: "alice", User2ID: "bob", Status: models.ConnectionAccepted}
	conns.On("AcceptConnectionRequest", mock.Anything, "c1", "bob").Return(accepted, nil)
	chats.On("CreateChatsForConnection", mock.Anything, accepted).Return([]models.Chat{{ID: "a"}, {ID: "b"}}, nil)

	conn, err := NewAcceptConnectionRequest(conns, chats).Execute(context.Background(), "c1", "bob")
	require.NoError(t, err)
	assert.Equal(t, accepted, conn)
	chats.AssertExpectations(t)
}

func TestAcceptConnectionRequestStopsOnFailure(t *testing.T) {
	conns := new(mocks.ConnectionRepositoryMock)
	chats := new(mocks.ChatRepositoryMock)
	conns.On("AcceptConnectionRequest", mock.Anything, "c1", "bob").Return(nil, models.ErrNotParticipant)

	_, err := NewAcceptConnectionRequest(conns, chats).Execute(context.Background(), "c1", "bob")
	assert.ErrorIs(t, err, models.ErrNotParticipant)
	chats.AssertNotCalled(t, "CreateChatsForConnection", mock.Anything, mock.Anything)
}

func TestSendMessageAddressesOtherParticipant(t *testing.T) {
	chats := new(mocks.ChatRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	chat := models.Chat{ID: "alice_bob_alice", BaseChatID: "alice_bob", OwnerID: "alice", ParticipantIDs: []string{"alice", "bob"}}
	chats.On("GetChat", mock.Anything, "alice_bob_alice", "alice").Return(chat, nil)
	messages.On("SendMessage", mock.Anything, mock.MatchedBy(func(m models.ChatMessage) bool {
		return m.SenderID == "alice" && m.ReceiverID == "bob" && m.ChatID == chat.ID && m.Content == "hi"
	})).Return(models.ChatMessage{ID: "m1", Status: models.StatusSent}, nil)

	sent, err := NewSendMessage(chats, messages).Execute(context.Background(), chat.ID, "alice", models.ChatMessage{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "m1", sent.ID)
}

func TestMarkChatAsReadUsesConnection(t *testing.T) {
	chats := new(mocks.ChatRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	chats.On("GetChat", mock.Anything, "alice_bob_bob", "bob").Return(models.Chat{ID: "alice_bob_bob", ConnectionID: "c1", OwnerID: "bob"}, nil)
	chats.On("GetChat", mock.Anything, "nope", "bob").Return(nil, models.ErrChatNotFound)
	messages.On("MarkMessagesAsRead", mock.Anything, "c1", "bob").Return(nil)

	uc := NewMarkChatAsRead(chats, messages)
	require.NoError(t, uc.Execute(context.Background(), "alice_bob_bob", "bob"))
	assert.ErrorIs(t, uc.Execute(context.Background(), "nope", "bob"), models.ErrChatNotFound)
	messages.AssertNumberOfCalls(t, "MarkMessagesAsRead", 1)
}

func TestUpdateUserProfileMergesChanges(t *testing.T) {
	profiles := new(mocks.UserProfileRepositoryMock)
	profiles.On("GetProfile", mock.Anything, "alice").Return(models.UserProfile{ID: "alice", DisplayName: "Alice", Bio: "old"}, nil)
	profiles.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(p models.UserProfile) bool {
		return p.DisplayName == "Alice" && p.Bio == "new" && p.ProfileSetupComplete
	})).Return(models.UserProfile{ID: "alice"}, nil)

	bio := "new"
	_, err := NewUpdateUserProfile(profiles).Execute(context.Background(), "alice", ProfileChanges{Bio: &bio})
	require.NoError(t, err)

	profiles.On("GetProfile", mock.Anything, "ghost").Return(nil, errors.New("offline"))
	_, err = NewUpdateUserProfile(profiles).Execute(context.Background(), "ghost", ProfileChanges{})
	assert.EqualError(t, err, "offline")
}
