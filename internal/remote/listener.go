package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"bondhub/internal/stream"
)

const changesChannel = "document_changes"

// Change describes one document write pushed by the store. Keys carries the
// trigger's routing fields: the user id for users, both endpoints for
// connections, the owner for chats and base chat, sender and receiver for
// messages.
type Change struct {
	Collection string   `json:"collection"`
	Op         string   `json:"op"`
	ID         string   `json:"id"`
	Keys       []string `json:"keys"`
}

// Key returns the i-th routing key or "".
func (c Change) Key(i int) string {
	if i < 0 || i >= len(c.Keys) {
		return ""
	}
	return c.Keys[i]
}

// Inserted reports whether the change created a document.
func (c Change) Inserted() bool {
	return c.Op == "INSERT"
}

// ParseChange decodes a notification payload.
func ParseChange(payload string) (Change, error) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	return change, nil
}

// Changes subscribes to every document write. Each call holds its own
// listener connection, released when the stream is closed. Changes are
// queued, not conflated.
func (c *Client) Changes(ctx context.Context) *stream.Stream[Change] {
	return stream.StartQueued(ctx, 64, func(ctx context.Context, emit func(Change) bool) error {
		listener := pq.NewListener(c.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
			if err != nil {
				c.log.Warn("change listener event", zap.Int("event", int(ev)), zap.Error(err))
			}
		})
		defer listener.Close()

		if err := listener.Listen(changesChannel); err != nil {
			return fmt.Errorf("listen %s: %w", changesChannel, err)
		}

		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case n := <-listener.Notify:
				// nil after a reconnect; anything sent meanwhile is lost
				if n == nil {
					continue
				}
				change, err := ParseChange(n.Extra)
				if err != nil {
					c.log.Warn("skip malformed change", zap.Error(err))
					continue
				}
				if !emit(change) {
					return nil
				}
			case <-ping.C:
				if err := listener.Ping(); err != nil {
					c.log.Warn("change listener ping failed", zap.Error(err))
				}
			}
		}
	})
}

// ChangeFeed is anything that streams document changes; *Client is one.
type ChangeFeed interface {
	Changes(ctx context.Context) *stream.Stream[Change]
}

// Snapshot re-delivers the result of fetch every time a document of
// collection changes, starting with the current result.
func Snapshot[T any](ctx context.Context, feed ChangeFeed, collection string, fetch func(context.Context) (T, error)) *stream.Stream[T] {
	return SnapshotOf(ctx, feed, func(c Change) bool { return c.Collection == collection }, fetch)
}

// SnapshotOf is Snapshot for the changes match accepts.
func SnapshotOf[T any](ctx context.Context, feed ChangeFeed, match func(Change) bool, fetch func(context.Context) (T, error)) *stream.Stream[T] {
	return stream.Start(ctx, func(ctx context.Context, emit func(T) bool) error {
		changes := feed.Changes(ctx)
		defer changes.Close()

		current, err := fetch(ctx)
		if err != nil {
			return err
		}
		if !emit(current) {
			return nil
		}
		for {
			change, ok := changes.Next(ctx)
			if !ok {
				return changes.Err()
			}
			if !match(change) {
				continue
			}
			current, err = fetch(ctx)
			if err != nil {
				return err
			}
			if !emit(current) {
				return nil
			}
		}
	})
}
