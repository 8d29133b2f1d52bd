package models

import "errors"

var (
	ErrConnectionExists        = errors.New("connection already exists")
	ErrConnectionNotActive     = errors.New("connection not active")
	ErrConnectionNotFound      = errors.New("connection not found")
	ErrSelfConnection          = errors.New("cannot connect with yourself")
	ErrUserProfileNotFound     = errors.New("user profile not found")
	ErrChatNotFound            = errors.New("chat not found")
	ErrMessageNotFound         = errors.New("message not found")
	ErrNotParticipant          = errors.New("user is not a participant")
	ErrInvalidStatusTransition = errors.New("invalid message status transition")
)
