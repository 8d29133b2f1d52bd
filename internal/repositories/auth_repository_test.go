package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bondhub/internal/mocks"
	"bondhub/internal/remote"
	"bondhub/internal/repositories"
)

func newAuthRepo(t *testing.T) (*repositories.AuthRepo, *mocks.AccountStoreMock, *mocks.UserStoreMock) {
	accounts := new(mocks.AccountStoreMock)
	users := new(mocks.UserStoreMock)
	repo := repositories.NewAuthRepo(accounts, users, openCache(t), "test-secret", time.Hour, zap.NewNop())
	return repo, accounts, users
}

func TestSignUpIssuesValidToken(t *testing.T) {
	repo, accounts, users := newAuthRepo(t)
	accounts.On("CreateAccount", mock.Anything, mock.AnythingOfType("remote.AccountDocument")).Return(nil)
	users.On("UpsertUser", mock.Anything, mock.MatchedBy(func(doc remote.UserDocument) bool {
		return doc.Email == "alice@example.com" && doc.DisplayName == "alice"
	})).Return(nil)

	session, err := repo.SignUp(context.Background(), " Alice@Example.com ", "secret1", "")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	validated, err := repo.ValidateToken(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, validated.UserID)
	assert.Equal(t, "alice@example.com", validated.Email)
	users.AssertExpectations(t)
}

func TestSignUpRemovesAccountWhenProfileFails(t *testing.T) {
	repo, accounts, users := newAuthRepo(t)
	var created remote.AccountDocument
	accounts.On("CreateAccount", mock.Anything, mock.AnythingOfType("remote.AccountDocument")).
		Run(func(args mock.Arguments) { created = args.Get(1).(remote.AccountDocument) }).
		Return(nil)
	users.On("UpsertUser", mock.Anything, mock.Anything).Return(errors.New("remote down"))
	accounts.On("DeleteAccount", mock.Anything, mock.MatchedBy(func(id string) bool { return id == created.ID })).Return(nil).Once()

	_, err := repo.SignUp(context.Background(), "a@b.io", "secret1", "A")
	require.Error(t, err)
	accounts.AssertExpectations(t)
}

func TestSignUpValidation(t *testing.T) {
	repo, accounts, _ := newAuthRepo(t)
	accounts.On("CreateAccount", mock.Anything, mock.Anything).Return(remote.ErrDuplicateDocument)

	_, err := repo.SignUp(context.Background(), "not-an-email", "secret1", "x")
	assert.ErrorIs(t, err, repositories.ErrInvalidEmail)
	_, err = repo.SignUp(context.Background(), "a@b.io", "123", "x")
	assert.ErrorIs(t, err, repositories.ErrWeakPassword)
	_, err = repo.SignUp(context.Background(), "a@b.io", "secret1", "x")
	assert.ErrorIs(t, err, repositories.ErrEmailInUse)
}

func TestSignIn(t *testing.T) {
	repo, accounts, _ := newAuthRepo(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts.On("GetAccountByEmail", mock.Anything, "a@b.io").
		Return(remote.AccountDocument{ID: "u1", Email: "a@b.io", PasswordHash: string(hash)}, nil)
	accounts.On("GetAccountByEmail", mock.Anything, "nobody@b.io").Return(nil, remote.ErrDocumentNotFound)

	session, err := repo.SignIn(context.Background(), "a@b.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)

	_, err = repo.SignIn(context.Background(), "a@b.io", "wrong")
	assert.ErrorIs(t, err, repositories.ErrInvalidCredentials)
	_, err = repo.SignIn(context.Background(), "nobody@b.io", "secret1")
	assert.ErrorIs(t, err, repositories.ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	repo, accounts, _ := newAuthRepo(t)
	other := repositories.NewAuthRepo(accounts, new(mocks.UserStoreMock), openCache(t), "other-secret", time.Hour, zap.NewNop())
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts.On("GetAccountByEmail", mock.Anything, "a@b.io").
		Return(remote.AccountDocument{ID: "u1", Email: "a@b.io", PasswordHash: string(hash)}, nil)

	session, err := other.SignIn(context.Background(), "a@b.io", "secret1")
	require.NoError(t, err)

	_, err = repo.ValidateToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, repositories.ErrInvalidToken)
	_, err = repo.ValidateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, repositories.ErrInvalidToken)
}

func TestSignOutClearsPushToken(t *testing.T) {
	repo, _, users := newAuthRepo(t)
	users.On("UpdateFCMToken", mock.Anything, "u1", "").Return(nil)
	require.NoError(t, repo.SignOut(context.Background(), "u1"))
	users.AssertExpectations(t)
}

func TestAuthErrorMessage(t *testing.T) {
	assert.Equal(t, "Incorrect email or password.", repositories.AuthErrorMessage(repositories.ErrInvalidCredentials))
	assert.Equal(t, "An account with this email already exists.", repositories.AuthErrorMessage(errors.Join(errors.New("ctx"), repositories.ErrEmailInUse)))
	assert.Equal(t, "boom", repositories.AuthErrorMessage(errors.New("boom")))
	assert.Empty(t, repositories.AuthErrorMessage(nil))
}
