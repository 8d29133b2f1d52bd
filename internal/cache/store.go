// Package cache is the embedded local store mirroring remote documents.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Table names, also used as invalidation keys for Watch.
const (
	TableUserProfiles = "user_profiles"
	TableConnections  = "chat_connections"
	TableChats        = "chats"
	TableMessages     = "chat_messages"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is the local cache. One instance is shared by every repository; the
// single sqlite connection serializes writes.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger

	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
}

type watcher struct {
	dirty chan struct{}
}

var shared struct {
	once  sync.Once
	store *Store
	err   error
}

// Shared returns the process-wide store, opening it on first use.
func Shared(path string, log *zap.Logger) (*Store, error) {
	shared.once.Do(func() {
		shared.store, shared.err = Open(path, log)
	})
	return shared.store, shared.err
}

// Open opens (and creates) a cache database at path. ":memory:" gives a
// throwaway store.
func Open(path string, log *zap.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			log.Debug("cache pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache tables: %w", err)
	}

	return &Store{db: db, log: log, watchers: make(map[string]map[*watcher]struct{})}, nil
}

func createTables(db *sqlx.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            display_name TEXT NOT NULL,
            profile_picture_url TEXT NOT NULL DEFAULT '',
            profile_picture_thumbnail_url TEXT NOT NULL DEFAULT '',
            bio TEXT NOT NULL DEFAULT '',
            profile_setup_complete INTEGER NOT NULL DEFAULT 0,
            last_updated INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS chat_connections (
            id TEXT PRIMARY KEY,
            user1_id TEXT NOT NULL,
            user2_id TEXT NOT NULL,
            initiator_id TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at INTEGER NOT NULL,
            last_interaction_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS chats (
            id TEXT PRIMARY KEY,
            base_chat_id TEXT NOT NULL,
            connection_id TEXT NOT NULL,
            owner_id TEXT NOT NULL,
            participant_ids TEXT NOT NULL DEFAULT '',
            display_name TEXT NOT NULL DEFAULT '',
            thumbnail_url TEXT NOT NULL DEFAULT '',
            last_message TEXT NOT NULL DEFAULT '',
            last_message_time INTEGER NOT NULL DEFAULT 0,
            unread_count INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE INDEX IF NOT EXISTS chats_owner_idx ON chats (owner_id);`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
            id TEXT PRIMARY KEY,
            chat_id TEXT NOT NULL,
            base_chat_id TEXT NOT NULL,
            sender_id TEXT NOT NULL,
            receiver_id TEXT NOT NULL,
            content TEXT NOT NULL,
            timestamp INTEGER NOT NULL,
            type TEXT NOT NULL,
            status TEXT NOT NULL,
            attachment_url TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE INDEX IF NOT EXISTS chat_messages_base_idx ON chat_messages (base_chat_id, timestamp);`,
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Profiles returns the user_profiles DAO.
func (s *Store) Profiles() *ProfileDAO { return &ProfileDAO{s: s} }

// Connections returns the chat_connections DAO.
func (s *Store) Connections() *ConnectionDAO { return &ConnectionDAO{s: s} }

// Chats returns the chats DAO.
func (s *Store) Chats() *ChatDAO { return &ChatDAO{s: s} }

// Messages returns the chat_messages DAO.
func (s *Store) Messages() *MessageDAO { return &MessageDAO{s: s} }

func (s *Store) subscribe(tables []string) *watcher {
	w := &watcher{dirty: make(chan struct{}, 1)}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tables {
		if s.watchers[t] == nil {
			s.watchers[t] = make(map[*watcher]struct{})
		}
		s.watchers[t][w] = struct{}{}
	}
	return w
}

func (s *Store) unsubscribe(w *watcher, tables []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tables {
		delete(s.watchers[t], w)
		if len(s.watchers[t]) == 0 {
			delete(s.watchers, t)
		}
	}
}

// invalidate marks every watcher of table dirty. Pending invalidations
// coalesce.
func (s *Store) invalidate(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers[table] {
		select {
		case w.dirty <- struct{}{}:
		default:
		}
	}
}
