// Package usecase holds one type per user-facing operation. Each wraps a
// single repository call, or a short fixed sequence of them.
package usecase

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/repositories"
)

type SignUp struct{ auth repositories.AuthRepository }

func NewSignUp(auth repositories.AuthRepository) *SignUp { return &SignUp{auth: auth} }

func (u *SignUp) Execute(ctx context.Context, email, password, displayName string) (models.Session, error) {
	return u.auth.SignUp(ctx, email, password, displayName)
}

type SignIn struct{ auth repositories.AuthRepository }

func NewSignIn(auth repositories.AuthRepository) *SignIn { return &SignIn{auth: auth} }

func (u *SignIn) Execute(ctx context.Context, email, password string) (models.Session, error) {
	return u.auth.SignIn(ctx, email, password)
}

type SignOut struct{ auth repositories.AuthRepository }

func NewSignOut(auth repositories.AuthRepository) *SignOut { return &SignOut{auth: auth} }

func (u *SignOut) Execute(ctx context.Context, userID string) error {
	return u.auth.SignOut(ctx, userID)
}

type UpdateFCMToken struct{ auth repositories.AuthRepository }

func NewUpdateFCMToken(auth repositories.AuthRepository) *UpdateFCMToken {
	return &UpdateFCMToken{auth: auth}
}

func (u *UpdateFCMToken) Execute(ctx context.Context, userID, token string) error {
	return u.auth.UpdateFCMToken(ctx, userID, token)
}
