package cache

import (
	"context"
	"database/sql"
	"errors"
)

const upsertConnection = `INSERT OR REPLACE INTO chat_connections
    (id, user1_id, user2_id, initiator_id, status, created_at, last_interaction_at)
    VALUES (:id, :user1_id, :user2_id, :initiator_id, :status, :created_at, :last_interaction_at)`

// ConnectionDAO queries chat_connections.
type ConnectionDAO struct {
	s *Store
}

// Upsert inserts or replaces a connection.
func (d *ConnectionDAO) Upsert(ctx context.Context, e ChatConnectionEntity) error {
	if _, err := d.s.db.NamedExecContext(ctx, upsertConnection, e); err != nil {
		return err
	}
	d.s.invalidate(TableConnections)
	return nil
}

// ReplaceForUser swaps every cached connection touching userID for
// entities.
func (d *ConnectionDAO) ReplaceForUser(ctx context.Context, userID string, entities []ChatConnectionEntity) error {
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM chat_connections WHERE user1_id=? OR user2_id=?`, userID, userID); err != nil {
		return err
	}
	for _, e := range entities {
		if _, err = tx.NamedExecContext(ctx, upsertConnection, e); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	d.s.invalidate(TableConnections)
	return nil
}

// Get returns a cached connection or ErrNotFound.
func (d *ConnectionDAO) Get(ctx context.Context, id string) (ChatConnectionEntity, error) {
	var e ChatConnectionEntity
	err := d.s.db.GetContext(ctx, &e, `SELECT * FROM chat_connections WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatConnectionEntity{}, ErrNotFound
	}
	return e, err
}

// ListForUser returns connections touching userID, most recent first.
func (d *ConnectionDAO) ListForUser(ctx context.Context, userID string) ([]ChatConnectionEntity, error) {
	entities := []ChatConnectionEntity{}
	err := d.s.db.SelectContext(ctx, &entities, `SELECT * FROM chat_connections
        WHERE user1_id=? OR user2_id=? ORDER BY last_interaction_at DESC`, userID, userID)
	return entities, err
}

// UpdateStatus changes the status of a cached connection.
func (d *ConnectionDAO) UpdateStatus(ctx context.Context, id, status string, at int64) error {
	if _, err := d.s.db.ExecContext(ctx, `UPDATE chat_connections SET status=?, last_interaction_at=? WHERE id=?`, status, at, id); err != nil {
		return err
	}
	d.s.invalidate(TableConnections)
	return nil
}

// Delete removes a connection.
func (d *ConnectionDAO) Delete(ctx context.Context, id string) error {
	if _, err := d.s.db.ExecContext(ctx, `DELETE FROM chat_connections WHERE id=?`, id); err != nil {
		return err
	}
	d.s.invalidate(TableConnections)
	return nil
}
