// Package remote is the client of the shared document store. Collections
// are Postgres tables; changes are pushed through LISTEN/NOTIFY.
package remote

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDuplicateDocument = errors.New("document already exists")
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Client talks to the remote document store.
type Client struct {
	db  *sqlx.DB
	dsn string
	log *zap.Logger
}

// Connect opens the remote store.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect remote: %w", err)
	}
	return &Client{db: db, dsn: dsn, log: log}, nil
}

// NewClient wraps an existing connection.
func NewClient(db *sqlx.DB, dsn string, log *zap.Logger) *Client {
	return &Client{db: db, dsn: dsn, log: log}
}

// Migrate applies the embedded schema migrations.
func (c *Client) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, c.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		c.log.Info("migration applied", zap.String("source", r.Source.Path), zap.Duration("duration", r.Duration))
	}
	return nil
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// MessagePath renders the document path of a message.
func MessagePath(baseChatID, messageID string) string {
	return "messages/" + baseChatID + "/messages/" + messageID
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
