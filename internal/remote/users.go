package remote

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

const userColumns = `id, email, display_name, profile_picture_url, profile_picture_thumbnail_url, bio, profile_setup_complete, fcm_token, last_updated`

// CreateAccount stores sign-in credentials.
func (c *Client) CreateAccount(ctx context.Context, doc AccountDocument) error {
	_, err := c.db.NamedExecContext(ctx, `INSERT INTO accounts (id, email, password_hash, created_at)
        VALUES (:id, :email, :password_hash, :created_at)`, doc)
	if isUniqueViolation(err) {
		return ErrDuplicateDocument
	}
	return err
}

// DeleteAccount removes credentials. Deleting a missing account is not an
// error.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	return err
}

// GetAccountByEmail looks up credentials by email.
func (c *Client) GetAccountByEmail(ctx context.Context, email string) (AccountDocument, error) {
	var doc AccountDocument
	err := c.db.GetContext(ctx, &doc, `SELECT id, email, password_hash, created_at FROM accounts WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return AccountDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// UpsertUser writes a user document, preserving its push token.
func (c *Client) UpsertUser(ctx context.Context, doc UserDocument) error {
	_, err := c.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES (:id, :email, :display_name, :profile_picture_url, :profile_picture_thumbnail_url, :bio, :profile_setup_complete, :fcm_token, :last_updated)
        ON CONFLICT (id) DO UPDATE SET
            email = EXCLUDED.email,
            display_name = EXCLUDED.display_name,
            profile_picture_url = EXCLUDED.profile_picture_url,
            profile_picture_thumbnail_url = EXCLUDED.profile_picture_thumbnail_url,
            bio = EXCLUDED.bio,
            profile_setup_complete = EXCLUDED.profile_setup_complete,
            fcm_token = COALESCE(EXCLUDED.fcm_token, users.fcm_token),
            last_updated = EXCLUDED.last_updated`, doc)
	return err
}

// GetUser fetches a user document.
func (c *Client) GetUser(ctx context.Context, id string) (UserDocument, error) {
	var doc UserDocument
	err := c.db.GetContext(ctx, &doc, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return UserDocument{}, ErrDocumentNotFound
	}
	return doc, err
}

// GetUsers fetches every user document whose id is in ids.
func (c *Client) GetUsers(ctx context.Context, ids []string) ([]UserDocument, error) {
	if len(ids) == 0 {
		return []UserDocument{}, nil
	}
	query, args, err := psql.Select(userColumns).From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	var docs []UserDocument
	err = c.db.SelectContext(ctx, &docs, query, args...)
	return docs, err
}

// SearchUsers matches display name or email prefix, case-insensitively.
func (c *Client) SearchUsers(ctx context.Context, term string, limit int) ([]UserDocument, error) {
	pattern := term + "%"
	query, args, err := psql.Select(userColumns).From("users").
		Where(sq.Or{sq.ILike{"display_name": pattern}, sq.ILike{"email": pattern}}).
		OrderBy("display_name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var docs []UserDocument
	err = c.db.SelectContext(ctx, &docs, query, args...)
	return docs, err
}

// UpdateFCMToken replaces the push token of a user. An empty token clears it.
func (c *Client) UpdateFCMToken(ctx context.Context, userID, token string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE users SET fcm_token = NULLIF($2, '') WHERE id=$1`, userID, token)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
