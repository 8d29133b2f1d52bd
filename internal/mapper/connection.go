package mapper

import (
	"bondhub/internal/cache"
	"bondhub/internal/models"
	"bondhub/internal/remote"
)

// ConnectionFromDocument reads a chat_connections document.
func ConnectionFromDocument(doc remote.ConnectionDocument) (models.ChatConnection, error) {
	status := models.ConnectionStatus(doc.Status)
	if !status.Valid() {
		return models.ChatConnection{}, unknown("connection status", doc.Status)
	}
	return models.ChatConnection{
		ID:                doc.ID,
		User1ID:           doc.User1ID,
		User2ID:           doc.User2ID,
		InitiatorID:       doc.InitiatorID,
		Status:            status,
		CreatedAt:         doc.CreatedAt.UTC(),
		LastInteractionAt: doc.LastInteractionAt.UTC(),
	}, nil
}

// ConnectionToDocument builds a chat_connections document.
func ConnectionToDocument(c models.ChatConnection) remote.ConnectionDocument {
	return remote.ConnectionDocument{
		ID:                c.ID,
		User1ID:           c.User1ID,
		User2ID:           c.User2ID,
		InitiatorID:       c.InitiatorID,
		Status:            string(c.Status),
		CreatedAt:         c.CreatedAt,
		LastInteractionAt: c.LastInteractionAt,
	}
}

// ConnectionFromEntity reads a cached connection.
func ConnectionFromEntity(e cache.ChatConnectionEntity) (models.ChatConnection, error) {
	status := models.ConnectionStatus(e.Status)
	if !status.Valid() {
		return models.ChatConnection{}, unknown("connection status", e.Status)
	}
	return models.ChatConnection{
		ID:                e.ID,
		User1ID:           e.User1ID,
		User2ID:           e.User2ID,
		InitiatorID:       e.InitiatorID,
		Status:            status,
		CreatedAt:         fromMillis(e.CreatedAt),
		LastInteractionAt: fromMillis(e.LastInteractionAt),
	}, nil
}

// ConnectionToEntity builds a cache row.
func ConnectionToEntity(c models.ChatConnection) cache.ChatConnectionEntity {
	return cache.ChatConnectionEntity{
		ID:                c.ID,
		User1ID:           c.User1ID,
		User2ID:           c.User2ID,
		InitiatorID:       c.InitiatorID,
		Status:            string(c.Status),
		CreatedAt:         toMillis(c.CreatedAt),
		LastInteractionAt: toMillis(c.LastInteractionAt),
	}
}

// ConnectionDocumentToEntity mirrors a document into the cache.
func ConnectionDocumentToEntity(doc remote.ConnectionDocument) (cache.ChatConnectionEntity, error) {
	c, err := ConnectionFromDocument(doc)
	if err != nil {
		return cache.ChatConnectionEntity{}, err
	}
	return ConnectionToEntity(c), nil
}
