package models

import "time"

// Chat is one participant's summary of a conversation. Both participants
// hold their own copy, linked by BaseChatID.
type Chat struct {
	ID              string    `json:"id"`
	BaseChatID      string    `json:"base_chat_id"`
	ConnectionID    string    `json:"connection_id"`
	OwnerID         string    `json:"owner_id"`
	ParticipantIDs  []string  `json:"participant_ids"`
	DisplayName     string    `json:"display_name"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	LastMessage     string    `json:"last_message,omitempty"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

// OtherParticipant returns the participant that is not the owner.
func (c Chat) OtherParticipant() string {
	for _, id := range c.ParticipantIDs {
		if id != c.OwnerID {
			return id
		}
	}
	return ""
}

// BaseChatID derives the id shared by both participants' chat copies. The
// result does not depend on argument order.
func BaseChatID(userA, userB string) string {
	first, second := OrderedPair(userA, userB)
	return first + "_" + second
}

// ChatCopyID names ownerID's copy of the conversation baseChatID.
func ChatCopyID(baseChatID, ownerID string) string {
	return baseChatID + "_" + ownerID
}
