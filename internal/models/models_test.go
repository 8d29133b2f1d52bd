package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseChatIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, BaseChatID("alice", "bob"), BaseChatID("bob", "alice"))
	assert.Equal(t, "alice_bob", BaseChatID("bob", "alice"))
}

func TestMessageStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to MessageStatus
		ok       bool
	}{
		{StatusSending, StatusSent, true},
		{StatusSent, StatusDelivered, true},
		{StatusDelivered, StatusRead, true},
		{StatusSending, StatusRead, true},
		{StatusRead, StatusSent, false},
		{StatusSending, StatusFailed, true},
		{StatusSent, StatusFailed, false},
		{StatusFailed, StatusSent, false},
		{StatusRead, StatusRead, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestConnectionHelpers(t *testing.T) {
	conn := ChatConnection{User1ID: "a", User2ID: "b", Status: ConnectionPending}
	assert.True(t, conn.Involves("a"))
	assert.False(t, conn.Involves("c"))
	assert.Equal(t, "b", conn.OtherUser("a"))
	assert.False(t, conn.Active())

	first, second := OrderedPair("z", "a")
	assert.Equal(t, "a", first)
	assert.Equal(t, "z", second)
}
