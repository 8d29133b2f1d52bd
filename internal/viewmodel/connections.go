package viewmodel

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/stream"
	"bondhub/internal/usecase"
)

type ConnectionsLoading struct{}

// ConnectionsLoaded splits the user's connections by role.
type ConnectionsLoaded struct {
	Accepted []models.ChatConnection `json:"accepted"`
	Incoming []models.ChatConnection `json:"incoming"`
	Outgoing []models.ChatConnection `json:"outgoing"`
}

type ConnectionsFailed struct {
	Message string `json:"message"`
}

func (ConnectionsLoading) Name() string { return "loading" }
func (ConnectionsLoaded) Name() string  { return "loaded" }
func (ConnectionsFailed) Name() string  { return "failed" }

// ConnectionsViewModel drives the friends and requests screen.
type ConnectionsViewModel struct {
	uc     *usecase.Set
	userID string

	states  *stream.Stream[State]
	notices notices
}

func NewConnectionsViewModel(ctx context.Context, uc *usecase.Set, userID string) *ConnectionsViewModel {
	vm := &ConnectionsViewModel{uc: uc, userID: userID, notices: newNotices()}
	vm.states = stream.Start(ctx, func(ctx context.Context, emit func(State) bool) error {
		if !emit(ConnectionsLoading{}) {
			return nil
		}
		src := uc.ObserveConnections.Execute(ctx, userID)
		err := stream.Forward(ctx, src, emit, func(conns []models.ChatConnection) State {
			return splitConnections(conns, userID)
		})
		if err != nil {
			emit(ConnectionsFailed{Message: err.Error()})
		}
		return nil
	})
	return vm
}

func splitConnections(conns []models.ChatConnection, userID string) ConnectionsLoaded {
	loaded := ConnectionsLoaded{
		Accepted: []models.ChatConnection{},
		Incoming: []models.ChatConnection{},
		Outgoing: []models.ChatConnection{},
	}
	for _, c := range conns {
		switch {
		case c.Active():
			loaded.Accepted = append(loaded.Accepted, c)
		case c.InitiatorID == userID:
			loaded.Outgoing = append(loaded.Outgoing, c)
		default:
			loaded.Incoming = append(loaded.Incoming, c)
		}
	}
	return loaded
}

func (vm *ConnectionsViewModel) States() *stream.Stream[State] { return vm.states }

func (vm *ConnectionsViewModel) Events() <-chan Notice { return vm.notices }

func (vm *ConnectionsViewModel) Request(ctx context.Context, toUserID string) {
	if _, err := vm.uc.SendConnectionRequest.Execute(ctx, vm.userID, toUserID); err != nil {
		vm.notices.post(err.Error(), true)
		return
	}
	vm.notices.post("Connection request sent", false)
}

func (vm *ConnectionsViewModel) Accept(ctx context.Context, connectionID string) {
	if _, err := vm.uc.AcceptConnectionRequest.Execute(ctx, connectionID, vm.userID); err != nil {
		vm.notices.post(err.Error(), true)
		return
	}
	vm.notices.post("Connection accepted", false)
}

func (vm *ConnectionsViewModel) Reject(ctx context.Context, connectionID string) {
	if err := vm.uc.RejectConnectionRequest.Execute(ctx, connectionID, vm.userID); err != nil {
		vm.notices.post(err.Error(), true)
	}
}

func (vm *ConnectionsViewModel) Close() { vm.states.Close() }
