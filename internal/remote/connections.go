package remote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const connectionColumns = `id, user1_id, user2_id, initiator_id, status, created_at, last_interaction_at`

// CreateConnection inserts a connection document and returns it as stored.
func (c *Client) CreateConnection(ctx context.Context, doc ConnectionDocument) (ConnectionDocument, error) {
	var stored ConnectionDocument
	rows, err := c.db.NamedQueryContext(ctx, `INSERT INTO chat_connections (`+connectionColumns+`)
        VALUES (:id, :user1_id, :user2_id, :initiator_id, :status, :created_at, :last_interaction_at)
        RETURNING `+connectionColumns, doc)
	if err != nil {
		if isUniqueViolation(err) {
			return ConnectionDocument{}, ErrDuplicateDocument
		}
		return ConnectionDocument{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return ConnectionDocument{}, err
		}
		return ConnectionDocument{}, errors.New("insert returned no row")
	}
	if err := rows.StructScan(&stored); err != nil {
		return ConnectionDocument{}, err
	}
	return stored, nil
}

// FindConnection returns the connection between a and b in either order.
func (c *Client) FindConnection(ctx context.Context, a, b string) (ConnectionDocument, error) {
	query, args, err := psql.Select(connectionColumns).From("chat_connections").
		Where(sq.Or{
			sq.Eq{"user1_id": a, "user2_id": b},
			sq.Eq{"user1_id": b, "user2_id": a},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return ConnectionDocument{}, err
	}
	var doc ConnectionDocument
	err = c.db.GetContext(ctx, &doc, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ConnectionDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// GetConnection fetches a connection by id.
func (c *Client) GetConnection(ctx context.Context, id string) (ConnectionDocument, error) {
	var doc ConnectionDocument
	err := c.db.GetContext(ctx, &doc, `SELECT `+connectionColumns+` FROM chat_connections WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ConnectionDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// ListConnections returns every connection touching userID.
func (c *Client) ListConnections(ctx context.Context, userID string) ([]ConnectionDocument, error) {
	var docs []ConnectionDocument
	err := c.db.SelectContext(ctx, &docs, `SELECT `+connectionColumns+` FROM chat_connections
        WHERE user1_id=$1 OR user2_id=$1 ORDER BY last_interaction_at DESC`, userID)
	return docs, err
}

// UpdateConnectionStatus sets the status and bumps the interaction time.
func (c *Client) UpdateConnectionStatus(ctx context.Context, id, status string, at time.Time) error {
	res, err := c.db.ExecContext(ctx, `UPDATE chat_connections SET status=$2, last_interaction_at=$3 WHERE id=$1`, id, status, at)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// DeleteConnection removes a connection document.
func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM chat_connections WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
