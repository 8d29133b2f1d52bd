package mapper

import (
	"bondhub/internal/cache"
	"bondhub/internal/models"
	"bondhub/internal/remote"
)

// ChatFromDocument reads a chats document.
func ChatFromDocument(doc remote.ChatDocument) models.Chat {
	participants := make([]string, len(doc.ParticipantIDs))
	copy(participants, doc.ParticipantIDs)
	chat := models.Chat{
		ID:             doc.ID,
		BaseChatID:     doc.BaseChatID,
		ConnectionID:   doc.ConnectionID,
		OwnerID:        doc.OwnerID,
		ParticipantIDs: participants,
		DisplayName:    doc.DisplayName.String,
		ThumbnailURL:   doc.ThumbnailURL.String,
		LastMessage:    doc.LastMessage.String,
		UnreadCount:    doc.UnreadMessageCount,
	}
	if doc.LastMessageTime.Valid {
		chat.LastMessageTime = doc.LastMessageTime.Time.UTC()
	}
	return chat
}

// ChatToDocument builds a chats document.
func ChatToDocument(c models.Chat) remote.ChatDocument {
	return remote.ChatDocument{
		ID:                 c.ID,
		BaseChatID:         c.BaseChatID,
		ConnectionID:       c.ConnectionID,
		OwnerID:            c.OwnerID,
		ParticipantIDs:     append([]string{}, c.ParticipantIDs...),
		DisplayName:        nullString(c.DisplayName),
		ThumbnailURL:       nullString(c.ThumbnailURL),
		LastMessage:        nullString(c.LastMessage),
		LastMessageTime:    nullTime(c.LastMessageTime),
		UnreadMessageCount: c.UnreadCount,
	}
}

// ChatFromEntity reads a cached chat.
func ChatFromEntity(e cache.ChatEntity) models.Chat {
	return models.Chat{
		ID:              e.ID,
		BaseChatID:      e.BaseChatID,
		ConnectionID:    e.ConnectionID,
		OwnerID:         e.OwnerID,
		ParticipantIDs:  append([]string{}, e.ParticipantIDs...),
		DisplayName:     e.DisplayName,
		ThumbnailURL:    e.ThumbnailURL,
		LastMessage:     e.LastMessage,
		LastMessageTime: fromMillis(e.LastMessageTime),
		UnreadCount:     e.UnreadCount,
	}
}

// ChatToEntity builds a cache row.
func ChatToEntity(c models.Chat) cache.ChatEntity {
	return cache.ChatEntity{
		ID:              c.ID,
		BaseChatID:      c.BaseChatID,
		ConnectionID:    c.ConnectionID,
		OwnerID:         c.OwnerID,
		ParticipantIDs:  cache.IDList(append([]string{}, c.ParticipantIDs...)),
		DisplayName:     c.DisplayName,
		ThumbnailURL:    c.ThumbnailURL,
		LastMessage:     c.LastMessage,
		LastMessageTime: toMillis(c.LastMessageTime),
		UnreadCount:     c.UnreadCount,
	}
}

// ChatDocumentToEntity mirrors a document into the cache.
func ChatDocumentToEntity(doc remote.ChatDocument) cache.ChatEntity {
	return ChatToEntity(ChatFromDocument(doc))
}
