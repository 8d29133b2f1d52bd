package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const messageColumns = `id, base_chat_id, chat_id, sender_id, receiver_id, content, type, status, attachment_url, timestamp`

// InsertMessage stores a message and updates both chat copies in one
// transaction: last message text and time on both, and an atomic increment
// of the receiver's unread counter.
func (c *Client) InsertMessage(ctx context.Context, doc MessageDocument) (MessageDocument, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return MessageDocument{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO messages (`+messageColumns+`)
        VALUES (:id, :base_chat_id, :chat_id, :sender_id, :receiver_id, :content, :type, :status, :attachment_url, :timestamp)`, doc); err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateDocument
		}
		return MessageDocument{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE chats SET last_message=$2, last_message_time=$3 WHERE base_chat_id=$1`,
		doc.BaseChatID, doc.Content, doc.Timestamp); err != nil {
		return MessageDocument{}, fmt.Errorf("update chat summaries: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE chats SET unread_message_count = unread_message_count + 1 WHERE base_chat_id=$1 AND owner_id=$2`,
		doc.BaseChatID, doc.ReceiverID); err != nil {
		return MessageDocument{}, fmt.Errorf("increment unread: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE chat_connections SET last_interaction_at=$2
        WHERE id = (SELECT connection_id FROM chats WHERE base_chat_id=$1 LIMIT 1)`, doc.BaseChatID, doc.Timestamp); err != nil {
		return MessageDocument{}, fmt.Errorf("touch connection: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return MessageDocument{}, err
	}
	return doc, nil
}

// GetMessage fetches a single message.
func (c *Client) GetMessage(ctx context.Context, baseChatID, id string) (MessageDocument, error) {
	var doc MessageDocument
	err := c.db.GetContext(ctx, &doc, `SELECT `+messageColumns+` FROM messages WHERE base_chat_id=$1 AND id=$2`, baseChatID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return MessageDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// ListMessages returns the latest limit messages of a base chat in
// chronological order.
func (c *Client) ListMessages(ctx context.Context, baseChatID string, limit int) ([]MessageDocument, error) {
	var docs []MessageDocument
	err := c.db.SelectContext(ctx, &docs, `SELECT * FROM (
            SELECT `+messageColumns+` FROM messages WHERE base_chat_id=$1 ORDER BY timestamp DESC LIMIT $2
        ) recent ORDER BY timestamp ASC`, baseChatID, limit)
	return docs, err
}

// UpdateMessageStatus sets the status of one message.
func (c *Client) UpdateMessageStatus(ctx context.Context, baseChatID, id, status string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE messages SET status=$3 WHERE base_chat_id=$1 AND id=$2`, baseChatID, id, status)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// MarkMessagesRead moves every delivered-but-unread message addressed to
// receiverID to READ and reports how many changed.
func (c *Client) MarkMessagesRead(ctx context.Context, baseChatID, receiverID string) (int64, error) {
	res, err := c.db.ExecContext(ctx, `UPDATE messages SET status='READ'
        WHERE base_chat_id=$1 AND receiver_id=$2 AND status IN ('SENT', 'DELIVERED')`, baseChatID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteMessage removes one message.
func (c *Client) DeleteMessage(ctx context.Context, baseChatID, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM messages WHERE base_chat_id=$1 AND id=$2`, baseChatID, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
