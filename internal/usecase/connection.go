package usecase

import (
	"context"
	"fmt"

	"bondhub/internal/models"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

type SendConnectionRequest struct{ conns repositories.ChatConnectionRepository }

func NewSendConnectionRequest(conns repositories.ChatConnectionRepository) *SendConnectionRequest {
	return &SendConnectionRequest{conns: conns}
}

func (u *SendConnectionRequest) Execute(ctx context.Context, fromID, toID string) (models.ChatConnection, error) {
	return u.conns.SendConnectionRequest(ctx, fromID, toID)
}

// AcceptConnectionRequest accepts a request and opens both chat copies.
type AcceptConnectionRequest struct {
	conns repositories.ChatConnectionRepository
	chats repositories.ChatRepository
}

func NewAcceptConnectionRequest(conns repositories.ChatConnectionRepository, chats repositories.ChatRepository) *AcceptConnectionRequest {
	return &AcceptConnectionRequest{conns: conns, chats: chats}
}

func (u *AcceptConnectionRequest) Execute(ctx context.Context, connectionID, userID string) (models.ChatConnection, error) {
	conn, err := u.conns.AcceptConnectionRequest(ctx, connectionID, userID)
	if err != nil {
		return models.ChatConnection{}, err
	}
	if _, err := u.chats.CreateChatsForConnection(ctx, conn); err != nil {
		return conn, fmt.Errorf("open chats: %w", err)
	}
	return conn, nil
}

type RejectConnectionRequest struct{ conns repositories.ChatConnectionRepository }

func NewRejectConnectionRequest(conns repositories.ChatConnectionRepository) *RejectConnectionRequest {
	return &RejectConnectionRequest{conns: conns}
}

func (u *RejectConnectionRequest) Execute(ctx context.Context, connectionID, userID string) error {
	return u.conns.RejectConnectionRequest(ctx, connectionID, userID)
}

type ObserveConnections struct{ conns repositories.ChatConnectionRepository }

func NewObserveConnections(conns repositories.ChatConnectionRepository) *ObserveConnections {
	return &ObserveConnections{conns: conns}
}

func (u *ObserveConnections) Execute(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection] {
	return u.conns.ObserveConnections(ctx, userID)
}

type ObservePendingRequests struct{ conns repositories.ChatConnectionRepository }

func NewObservePendingRequests(conns repositories.ChatConnectionRepository) *ObservePendingRequests {
	return &ObservePendingRequests{conns: conns}
}

func (u *ObservePendingRequests) Execute(ctx context.Context, userID string) *stream.Stream[[]models.ChatConnection] {
	return u.conns.ObservePendingRequests(ctx, userID)
}
