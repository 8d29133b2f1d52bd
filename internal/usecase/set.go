package usecase

import "bondhub/internal/repositories"

// Repositories bundles what the use cases run against.
type Repositories struct {
	Auth        repositories.AuthRepository
	Profiles    repositories.UserProfileRepository
	Connections repositories.ChatConnectionRepository
	Chats       repositories.ChatRepository
	Messages    repositories.ChatMessageRepository
}

// Set holds one instance of every use case.
type Set struct {
	SignUp                  *SignUp
	SignIn                  *SignIn
	SignOut                 *SignOut
	UpdateFCMToken          *UpdateFCMToken
	GetUserProfile          *GetUserProfile
	ObserveUserProfile      *ObserveUserProfile
	UpdateUserProfile       *UpdateUserProfile
	SearchUsers             *SearchUsers
	SendConnectionRequest   *SendConnectionRequest
	AcceptConnectionRequest *AcceptConnectionRequest
	RejectConnectionRequest *RejectConnectionRequest
	ObserveConnections      *ObserveConnections
	ObservePendingRequests  *ObservePendingRequests
	ObserveChats            *ObserveChats
	GetChat                 *GetChat
	DeleteChat              *DeleteChat
	SendMessage             *SendMessage
	ObserveMessages         *ObserveMessages
	GetMessages             *GetMessages
	UpdateMessageStatus     *UpdateMessageStatus
	MarkMessagesAsRead      *MarkMessagesAsRead
	MarkChatAsRead          *MarkChatAsRead
	DeleteMessage           *DeleteMessage
}

// New wires every use case to r.
func New(r Repositories) *Set {
	return &Set{
		SignUp:                  NewSignUp(r.Auth),
		SignIn:                  NewSignIn(r.Auth),
		SignOut:                 NewSignOut(r.Auth),
		UpdateFCMToken:          NewUpdateFCMToken(r.Auth),
		GetUserProfile:          NewGetUserProfile(r.Profiles),
		ObserveUserProfile:      NewObserveUserProfile(r.Profiles),
		UpdateUserProfile:       NewUpdateUserProfile(r.Profiles),
		SearchUsers:             NewSearchUsers(r.Profiles),
		SendConnectionRequest:   NewSendConnectionRequest(r.Connections),
		AcceptConnectionRequest: NewAcceptConnectionRequest(r.Connections, r.Chats),
		RejectConnectionRequest: NewRejectConnectionRequest(r.Connections),
		ObserveConnections:      NewObserveConnections(r.Connections),
		ObservePendingRequests:  NewObservePendingRequests(r.Connections),
		ObserveChats:            NewObserveChats(r.Chats),
		GetChat:                 NewGetChat(r.Chats),
		DeleteChat:              NewDeleteChat(r.Chats),
		SendMessage:             NewSendMessage(r.Chats, r.Messages),
		ObserveMessages:         NewObserveMessages(r.Messages),
		GetMessages:             NewGetMessages(r.Messages),
		UpdateMessageStatus:     NewUpdateMessageStatus(r.Messages),
		MarkMessagesAsRead:      NewMarkMessagesAsRead(r.Messages),
		MarkChatAsRead:          NewMarkChatAsRead(r.Chats, r.Messages),
		DeleteMessage:           NewDeleteMessage(r.Messages),
	}
}
