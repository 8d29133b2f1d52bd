// Package livesync keeps this node's cache current for the users connected
// to it by replaying the remote change feed as targeted refreshes.
package livesync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bondhub/internal/remote"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

const refreshTimeout = 10 * time.Second

// Presence reports which users have an open session on this node.
type Presence interface {
	IsActive(userID string) bool
}

type Repositories struct {
	Profiles    repositories.UserProfileRepository
	Connections repositories.ChatConnectionRepository
	Chats       repositories.ChatRepository
	Messages    repositories.ChatMessageRepository
}

type Syncer struct {
	repos    Repositories
	presence Presence
	log      *zap.Logger
}

func NewSyncer(repos Repositories, presence Presence, log *zap.Logger) *Syncer {
	return &Syncer{repos: repos, presence: presence, log: log}
}

// Run applies changes until ctx is done or the feed ends.
func (s *Syncer) Run(ctx context.Context, changes *stream.Stream[remote.Change]) error {
	for {
		change, ok := changes.Next(ctx)
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			return changes.Err()
		}
		s.Apply(ctx, change)
	}
}

// Apply re-pulls whatever change touched, for active users only. Refresh
// failures are logged; the next change or reconnect catches up.
func (s *Syncer) Apply(ctx context.Context, change remote.Change) {
	switch change.Collection {
	case remote.CollectionUsers:
		if s.presence.IsActive(change.Key(0)) {
			s.refresh(ctx, change, func(ctx context.Context) error {
				return s.repos.Profiles.Refresh(ctx, change.Key(0))
			})
		}
	case remote.CollectionConnections:
		for _, userID := range s.activeAmong(change.Key(0), change.Key(1)) {
			s.refresh(ctx, change, func(ctx context.Context) error {
				return s.repos.Connections.Refresh(ctx, userID)
			})
		}
	case remote.CollectionChats:
		if s.presence.IsActive(change.Key(0)) {
			s.refresh(ctx, change, func(ctx context.Context) error {
				return s.repos.Chats.Refresh(ctx, change.Key(0))
			})
		}
	case remote.CollectionMessages:
		if len(s.activeAmong(change.Key(1), change.Key(2))) > 0 {
			s.refresh(ctx, change, func(ctx context.Context) error {
				return s.repos.Messages.Refresh(ctx, change.Key(0))
			})
		}
	}
}

func (s *Syncer) activeAmong(userIDs ...string) []string {
	var active []string
	for _, id := range userIDs {
		if id != "" && s.presence.IsActive(id) {
			active = append(active, id)
		}
	}
	return active
}

func (s *Syncer) refresh(ctx context.Context, change remote.Change, pull func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	if err := pull(ctx); err != nil {
		s.log.Warn("live refresh failed",
			zap.String("collection", change.Collection),
			zap.String("id", change.ID),
			zap.Error(err))
	}
}
