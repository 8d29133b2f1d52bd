package mapper

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondhub/internal/cache"
	"bondhub/internal/models"
	"bondhub/internal/remote"
)

var ts = time.Date(2024, 3, 14, 15, 9, 26, 535000000, time.UTC)

func freezeClock(t *testing.T, at time.Time) {
	prev := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = prev })
}

func TestUserProfileEntityRoundTrip(t *testing.T) {
	freezeClock(t, ts.Add(time.Hour))

	e := cache.UserProfileEntity{
		ID:                   "u1",
		Email:                "a@b.c",
		DisplayName:          "Alice",
		ProfilePictureURL:    "https://img/a.png",
		ThumbnailURL:         "https://img/a_t.png",
		Bio:                  "hi",
		ProfileSetupComplete: true,
		LastUpdated:          ts.UnixMilli(),
	}
	got := UserProfileToEntity(UserProfileFromEntity(e))
	if diff := cmp.Diff(e, got, cmpopts.IgnoreFields(cache.UserProfileEntity{}, "LastUpdated")); diff != "" {
		t.Errorf("entity round trip (-want +got):\n%s", diff)
	}
	assert.Equal(t, ts.Add(time.Hour).UnixMilli(), got.LastUpdated)

	p := UserProfileFromEntity(e)
	back := UserProfileFromEntity(UserProfileToEntity(p))
	if diff := cmp.Diff(p, back, cmpopts.IgnoreFields(models.UserProfile{}, "LastUpdated")); diff != "" {
		t.Errorf("domain round trip (-want +got):\n%s", diff)
	}
}

func TestUserProfileDocumentMissingFields(t *testing.T) {
	doc := remote.UserDocument{ID: "u1", Email: "a@b.c", DisplayName: "Alice", LastUpdated: ts}
	p := UserProfileFromDocument(doc)
	assert.Empty(t, p.Bio)
	assert.Empty(t, p.ProfilePictureURL)
	assert.Equal(t, ts, p.LastUpdated)

	back := UserProfileToDocument(p)
	assert.False(t, back.Bio.Valid)
	assert.False(t, back.FCMToken.Valid)
	assert.Equal(t, ts.UnixMilli(), UserDocumentToEntity(doc).LastUpdated)
}

func TestConnectionRoundTrip(t *testing.T) {
	c := models.ChatConnection{
		ID:                "c1",
		User1ID:           "alice",
		User2ID:           "bob",
		InitiatorID:       "alice",
		Status:            models.ConnectionPending,
		CreatedAt:         ts,
		LastInteractionAt: ts.Add(time.Minute),
	}
	fromEntity, err := ConnectionFromEntity(ConnectionToEntity(c))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(c, fromEntity))

	fromDoc, err := ConnectionFromDocument(ConnectionToDocument(c))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(c, fromDoc))

	e, err := ConnectionDocumentToEntity(ConnectionToDocument(c))
	require.NoError(t, err)
	assert.Equal(t, ConnectionToEntity(c), e)
}

func TestConnectionUnknownStatus(t *testing.T) {
	_, err := ConnectionFromEntity(cache.ChatConnectionEntity{ID: "c1", Status: "BLOCKED"})
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = ConnectionFromDocument(remote.ConnectionDocument{ID: "c1", Status: ""})
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestChatRoundTrip(t *testing.T) {
	e := cache.ChatEntity{
		ID:              "alice_bob_alice",
		BaseChatID:      "alice_bob",
		ConnectionID:    "c1",
		OwnerID:         "alice",
		ParticipantIDs:  cache.IDList{"alice", "bob"},
		DisplayName:     "Bob",
		LastMessage:     "hey",
		LastMessageTime: ts.UnixMilli(),
		UnreadCount:     3,
	}
	assert.Empty(t, cmp.Diff(e, ChatToEntity(ChatFromEntity(e))))

	c := ChatFromEntity(e)
	doc := ChatToDocument(c)
	assert.Equal(t, "Bob", doc.DisplayName.String)
	assert.False(t, doc.ThumbnailURL.Valid)
	assert.Empty(t, cmp.Diff(c, ChatFromDocument(doc)))
	assert.Empty(t, cmp.Diff(e, ChatDocumentToEntity(doc)))
}

func TestChatWithoutMessages(t *testing.T) {
	doc := remote.ChatDocument{ID: "x", OwnerID: "alice", ParticipantIDs: []string{"alice", "bob"}}
	c := ChatFromDocument(doc)
	assert.True(t, c.LastMessageTime.IsZero())
	assert.Equal(t, int64(0), ChatToEntity(c).LastMessageTime)
	assert.True(t, ChatFromEntity(ChatToEntity(c)).LastMessageTime.IsZero())
}

func TestMessageRoundTrip(t *testing.T) {
	m := models.ChatMessage{
		ID:            "m1",
		ChatID:        "alice_bob_alice",
		BaseChatID:    "alice_bob",
		SenderID:      "alice",
		ReceiverID:    "bob",
		Content:       "hello",
		Timestamp:     ts,
		Type:          models.MessageImage,
		Status:        models.StatusSent,
		AttachmentURL: "https://img/1.jpg",
	}
	fromEntity, err := MessageFromEntity(MessageToEntity(m))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(m, fromEntity))

	fromDoc, err := MessageFromDocument(MessageToDocument(m))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(m, fromDoc))
}

func TestMessageUnknownEnums(t *testing.T) {
	doc := remote.MessageDocument{ID: "m1", Type: "STICKER", Status: "SENT"}
	_, err := MessageFromDocument(doc)
	assert.ErrorIs(t, err, ErrUnknownValue)

	_, err = MessageDocumentToEntity(remote.MessageDocument{ID: "m1", Type: "TEXT", Status: "LOST", AttachmentURL: sql.NullString{}})
	assert.ErrorIs(t, err, ErrUnknownValue)

	_, err = MessageFromEntity(cache.ChatMessageEntity{ID: "m1", Type: "TEXT", Status: "READ"})
	assert.NoError(t, err)
}
