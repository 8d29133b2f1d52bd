package ws

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/stream"
	"bondhub/internal/viewmodel"
)

// inbound is a client frame. Which fields matter depends on Action.
type inbound struct {
	Action        string             `json:"action"`
	Content       string             `json:"content,omitempty"`
	Type          models.MessageType `json:"type,omitempty"`
	AttachmentURL string             `json:"attachment_url,omitempty"`
	ConnectionID  string             `json:"connection_id,omitempty"`
	ToUserID      string             `json:"to_user_id,omitempty"`
}

// statePayload is the body of a "state" event.
type statePayload struct {
	State string          `json:"state"`
	Data  viewmodel.State `json:"data"`
}

// session adapts one view model to a socket.
type session interface {
	States() *stream.Stream[viewmodel.State]
	Events() <-chan viewmodel.Notice
	Handle(ctx context.Context, in inbound) bool
	Close()
}

type chatListSession struct {
	*viewmodel.ChatListViewModel
}

func (chatListSession) Events() <-chan viewmodel.Notice { return nil }

func (chatListSession) Handle(context.Context, inbound) bool { return false }

type messagesSession struct {
	*viewmodel.MessagesViewModel
}

func (s messagesSession) Handle(ctx context.Context, in inbound) bool {
	switch in.Action {
	case "send":
		typ := in.Type
		if typ == "" {
			typ = models.MessageText
		}
		s.Send(ctx, in.Content, typ, in.AttachmentURL)
	case "read":
		s.MarkRead(ctx)
	default:
		return false
	}
	return true
}

type connectionsSession struct {
	*viewmodel.ConnectionsViewModel
}

func (s connectionsSession) Handle(ctx context.Context, in inbound) bool {
	switch in.Action {
	case "request":
		s.Request(ctx, in.ToUserID)
	case "accept":
		s.Accept(ctx, in.ConnectionID)
	case "reject":
		s.Reject(ctx, in.ConnectionID)
	default:
		return false
	}
	return true
}
