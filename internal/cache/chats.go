package cache

import (
	"context"
	"database/sql"
	"errors"
)

const upsertChat = `INSERT OR REPLACE INTO chats
    (id, base_chat_id, connection_id, owner_id, participant_ids, display_name, thumbnail_url, last_message, last_message_time, unread_count)
    VALUES (:id, :base_chat_id, :connection_id, :owner_id, :participant_ids, :display_name, :thumbnail_url, :last_message, :last_message_time, :unread_count)`

// ChatDAO queries chats.
type ChatDAO struct {
	s *Store
}

// Upsert inserts or replaces a chat copy.
func (d *ChatDAO) Upsert(ctx context.Context, e ChatEntity) error {
	if _, err := d.s.db.NamedExecContext(ctx, upsertChat, e); err != nil {
		return err
	}
	d.s.invalidate(TableChats)
	return nil
}

// ReplaceForOwner swaps every cached chat of ownerID for entities.
func (d *ChatDAO) ReplaceForOwner(ctx context.Context, ownerID string, entities []ChatEntity) error {
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM chats WHERE owner_id=?`, ownerID); err != nil {
		return err
	}
	for _, e := range entities {
		if _, err = tx.NamedExecContext(ctx, upsertChat, e); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	d.s.invalidate(TableChats)
	return nil
}

// Get returns a cached chat or ErrNotFound.
func (d *ChatDAO) Get(ctx context.Context, id string) (ChatEntity, error) {
	var e ChatEntity
	err := d.s.db.GetContext(ctx, &e, `SELECT * FROM chats WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatEntity{}, ErrNotFound
	}
	return e, err
}

// ListForOwner returns the owner's chats, most recent message first.
func (d *ChatDAO) ListForOwner(ctx context.Context, ownerID string) ([]ChatEntity, error) {
	entities := []ChatEntity{}
	err := d.s.db.SelectContext(ctx, &entities, `SELECT * FROM chats WHERE owner_id=? ORDER BY last_message_time DESC`, ownerID)
	return entities, err
}

// ResetUnread zeroes the owner's counter for a connection.
func (d *ChatDAO) ResetUnread(ctx context.Context, connectionID, ownerID string) error {
	if _, err := d.s.db.ExecContext(ctx, `UPDATE chats SET unread_count=0 WHERE connection_id=? AND owner_id=?`, connectionID, ownerID); err != nil {
		return err
	}
	d.s.invalidate(TableChats)
	return nil
}

// ApplyMessage mirrors a confirmed message onto both cached copies of a
// conversation: last message on both, one more unread for the receiver.
func (d *ChatDAO) ApplyMessage(ctx context.Context, baseChatID, receiverID, content string, at int64) error {
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `UPDATE chats SET last_message=?, last_message_time=? WHERE base_chat_id=?`, content, at, baseChatID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE chats SET unread_count=unread_count+1 WHERE base_chat_id=? AND owner_id=?`, baseChatID, receiverID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	d.s.invalidate(TableChats)
	return nil
}

// Delete removes a chat copy.
func (d *ChatDAO) Delete(ctx context.Context, id string) error {
	if _, err := d.s.db.ExecContext(ctx, `DELETE FROM chats WHERE id=?`, id); err != nil {
		return err
	}
	d.s.invalidate(TableChats)
	return nil
}
