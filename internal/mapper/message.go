package mapper

import (
	"bondhub/internal/cache"
	"bondhub/internal/models"
	"bondhub/internal/remote"
)

func decodeMessageEnums(typ, status string) (models.MessageType, models.MessageStatus, error) {
	t := models.MessageType(typ)
	if !t.Valid() {
		return "", "", unknown("message type", typ)
	}
	s := models.MessageStatus(status)
	if !s.Valid() {
		return "", "", unknown("message status", status)
	}
	return t, s, nil
}

// MessageFromDocument reads a message document.
func MessageFromDocument(doc remote.MessageDocument) (models.ChatMessage, error) {
	t, s, err := decodeMessageEnums(doc.Type, doc.Status)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return models.ChatMessage{
		ID:            doc.ID,
		ChatID:        doc.ChatID,
		BaseChatID:    doc.BaseChatID,
		SenderID:      doc.SenderID,
		ReceiverID:    doc.ReceiverID,
		Content:       doc.Content,
		Timestamp:     doc.Timestamp.UTC(),
		Type:          t,
		Status:        s,
		AttachmentURL: doc.AttachmentURL.String,
	}, nil
}

// MessageToDocument builds a message document.
func MessageToDocument(m models.ChatMessage) remote.MessageDocument {
	return remote.MessageDocument{
		ID:            m.ID,
		BaseChatID:    m.BaseChatID,
		ChatID:        m.ChatID,
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		Content:       m.Content,
		Type:          string(m.Type),
		Status:        string(m.Status),
		AttachmentURL: nullString(m.AttachmentURL),
		Timestamp:     m.Timestamp,
	}
}

// MessageFromEntity reads a cached message.
func MessageFromEntity(e cache.ChatMessageEntity) (models.ChatMessage, error) {
	t, s, err := decodeMessageEnums(e.Type, e.Status)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return models.ChatMessage{
		ID:            e.ID,
		ChatID:        e.ChatID,
		BaseChatID:    e.BaseChatID,
		SenderID:      e.SenderID,
		ReceiverID:    e.ReceiverID,
		Content:       e.Content,
		Timestamp:     fromMillis(e.Timestamp),
		Type:          t,
		Status:        s,
		AttachmentURL: e.AttachmentURL,
	}, nil
}

// MessageToEntity builds a cache row.
func MessageToEntity(m models.ChatMessage) cache.ChatMessageEntity {
	return cache.ChatMessageEntity{
		ID:            m.ID,
		ChatID:        m.ChatID,
		BaseChatID:    m.BaseChatID,
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		Content:       m.Content,
		Timestamp:     toMillis(m.Timestamp),
		Type:          string(m.Type),
		Status:        string(m.Status),
		AttachmentURL: m.AttachmentURL,
	}
}

// MessageDocumentToEntity mirrors a document into the cache.
func MessageDocumentToEntity(doc remote.MessageDocument) (cache.ChatMessageEntity, error) {
	m, err := MessageFromDocument(doc)
	if err != nil {
		return cache.ChatMessageEntity{}, err
	}
	return MessageToEntity(m), nil
}
