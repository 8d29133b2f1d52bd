package cache

import (
	"context"
	"database/sql"
	"errors"
)

const upsertMessage = `INSERT OR REPLACE INTO chat_messages
    (id, chat_id, base_chat_id, sender_id, receiver_id, content, timestamp, type, status, attachment_url)
    VALUES (:id, :chat_id, :base_chat_id, :sender_id, :receiver_id, :content, :timestamp, :type, :status, :attachment_url)`

// MessageDAO queries chat_messages.
type MessageDAO struct {
	s *Store
}

// Upsert inserts or replaces a message.
func (d *MessageDAO) Upsert(ctx context.Context, e ChatMessageEntity) error {
	if _, err := d.s.db.NamedExecContext(ctx, upsertMessage, e); err != nil {
		return err
	}
	d.s.invalidate(TableMessages)
	return nil
}

// UpsertAll inserts or replaces messages in one transaction.
func (d *MessageDAO) UpsertAll(ctx context.Context, entities []ChatMessageEntity) error {
	if len(entities) == 0 {
		return nil
	}
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, e := range entities {
		if _, err := tx.NamedExecContext(ctx, upsertMessage, e); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	d.s.invalidate(TableMessages)
	return nil
}

// ReplaceWindow makes the cached messages of baseChatID with a timestamp of
// at least since match entities. Local SENDING and FAILED rows have no remote
// copy yet and are kept.
func (d *MessageDAO) ReplaceWindow(ctx context.Context, baseChatID string, since int64, entities []ChatMessageEntity) error {
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM chat_messages
        WHERE base_chat_id=? AND timestamp>=? AND status NOT IN ('SENDING', 'FAILED')`, baseChatID, since); err != nil {
		return err
	}
	for _, e := range entities {
		if _, err = tx.NamedExecContext(ctx, upsertMessage, e); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	d.s.invalidate(TableMessages)
	return nil
}

// Get returns a cached message or ErrNotFound.
func (d *MessageDAO) Get(ctx context.Context, id string) (ChatMessageEntity, error) {
	var e ChatMessageEntity
	err := d.s.db.GetContext(ctx, &e, `SELECT * FROM chat_messages WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatMessageEntity{}, ErrNotFound
	}
	return e, err
}

// ListByBaseChat returns the messages of a conversation in order.
func (d *MessageDAO) ListByBaseChat(ctx context.Context, baseChatID string) ([]ChatMessageEntity, error) {
	entities := []ChatMessageEntity{}
	err := d.s.db.SelectContext(ctx, &entities, `SELECT * FROM chat_messages WHERE base_chat_id=? ORDER BY timestamp ASC, id ASC`, baseChatID)
	return entities, err
}

// UpdateStatus sets the status of one message.
func (d *MessageDAO) UpdateStatus(ctx context.Context, id, status string) error {
	if _, err := d.s.db.ExecContext(ctx, `UPDATE chat_messages SET status=? WHERE id=?`, status, id); err != nil {
		return err
	}
	d.s.invalidate(TableMessages)
	return nil
}

// MarkRead moves the receiver's SENT and DELIVERED messages to READ.
func (d *MessageDAO) MarkRead(ctx context.Context, baseChatID, receiverID string) error {
	if _, err := d.s.db.ExecContext(ctx, `UPDATE chat_messages SET status='READ'
        WHERE base_chat_id=? AND receiver_id=? AND status IN ('SENT', 'DELIVERED')`, baseChatID, receiverID); err != nil {
		return err
	}
	d.s.invalidate(TableMessages)
	return nil
}

// Delete removes a message.
func (d *MessageDAO) Delete(ctx context.Context, id string) error {
	if _, err := d.s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id=?`, id); err != nil {
		return err
	}
	d.s.invalidate(TableMessages)
	return nil
}
