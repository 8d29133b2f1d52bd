package remote

import (
	"context"
	"database/sql"
	"errors"
)

const chatColumns = `id, base_chat_id, connection_id, owner_id, participant_ids, display_name, thumbnail_url, last_message, last_message_time, unread_message_count`

// CreateChat inserts a chat copy. An existing copy for the same owner and
// base chat is returned unchanged.
func (c *Client) CreateChat(ctx context.Context, doc ChatDocument) (ChatDocument, error) {
	_, err := c.db.NamedExecContext(ctx, `INSERT INTO chats (`+chatColumns+`)
        VALUES (:id, :base_chat_id, :connection_id, :owner_id, :participant_ids, :display_name, :thumbnail_url, :last_message, :last_message_time, :unread_message_count)
        ON CONFLICT (base_chat_id, owner_id) DO NOTHING`, doc)
	if err != nil {
		return ChatDocument{}, err
	}
	var stored ChatDocument
	err = c.db.GetContext(ctx, &stored, `SELECT `+chatColumns+` FROM chats WHERE base_chat_id=$1 AND owner_id=$2`, doc.BaseChatID, doc.OwnerID)
	return stored, err
}

// GetChat fetches a chat copy by id.
func (c *Client) GetChat(ctx context.Context, id string) (ChatDocument, error) {
	var doc ChatDocument
	err := c.db.GetContext(ctx, &doc, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// ListChats returns the chat copies owned by ownerID, most recent first.
func (c *Client) ListChats(ctx context.Context, ownerID string) ([]ChatDocument, error) {
	var docs []ChatDocument
	err := c.db.SelectContext(ctx, &docs, `SELECT `+chatColumns+` FROM chats
        WHERE owner_id=$1 ORDER BY last_message_time DESC NULLS LAST`, ownerID)
	return docs, err
}

// ListChatsByConnection returns both copies belonging to a connection.
func (c *Client) ListChatsByConnection(ctx context.Context, connectionID string) ([]ChatDocument, error) {
	var docs []ChatDocument
	err := c.db.SelectContext(ctx, &docs, `SELECT `+chatColumns+` FROM chats WHERE connection_id=$1`, connectionID)
	return docs, err
}

// ResetUnreadCount zeroes the owner's counter for a connection.
func (c *Client) ResetUnreadCount(ctx context.Context, connectionID, ownerID string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE chats SET unread_message_count = 0 WHERE connection_id=$1 AND owner_id=$2`, connectionID, ownerID)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// DeleteChat removes one chat copy.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
