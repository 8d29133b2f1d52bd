package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bondhub/internal/cache"
	"bondhub/internal/mapper"
	"bondhub/internal/models"
	"bondhub/internal/remote"
)

const minPasswordLength = 6

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidToken       = errors.New("invalid token")
)

var authMessages = map[error]string{
	ErrEmailInUse:         "An account with this email already exists.",
	ErrInvalidCredentials: "Incorrect email or password.",
	ErrWeakPassword:       "Password must be at least 6 characters.",
	ErrInvalidEmail:       "Please enter a valid email address.",
	ErrInvalidToken:       "Your session has expired. Please sign in again.",
}

// AuthErrorMessage turns known auth failures into user-facing text and
// falls back to the raw error.
func AuthErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	for known, msg := range authMessages {
		if errors.Is(err, known) {
			return msg
		}
	}
	return err.Error()
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthRepository signs users up and in and validates their sessions.
type AuthRepository interface {
	SignUp(ctx context.Context, email, password, displayName string) (models.Session, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context, userID string) error
	ValidateToken(ctx context.Context, token string) (models.Session, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

// AuthRepo issues HS256 session tokens over bcrypt-hashed accounts.
type AuthRepo struct {
	accounts AccountStore
	users    UserStore
	store    *cache.Store
	secret   []byte
	ttl      time.Duration
	log      *zap.Logger
}

// NewAuthRepo constructs an AuthRepo.
func NewAuthRepo(accounts AccountStore, users UserStore, store *cache.Store, secret string, ttl time.Duration, log *zap.Logger) *AuthRepo {
	return &AuthRepo{
		accounts: accounts,
		users:    users,
		store:    store,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log.Named("auth"),
	}
}

// SignUp creates the account and its profile, then opens a session.
func (r *AuthRepo) SignUp(ctx context.Context, email, password, displayName string) (models.Session, error) {
	ctx, span := tracer.Start(ctx, "AuthRepo.SignUp")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Session{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return models.Session{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Session{}, fmt.Errorf("hash password: %w", err)
	}

	account := remote.AccountDocument{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now(),
	}
	if err := r.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, remote.ErrDuplicateDocument) {
			return models.Session{}, ErrEmailInUse
		}
		remoteFailed(span, "create_account", err)
		return models.Session{}, err
	}

	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	profile := models.UserProfile{
		ID:          account.ID,
		Email:       email,
		DisplayName: displayName,
		LastUpdated: now(),
	}
	if err := r.users.UpsertUser(ctx, mapper.UserProfileToDocument(profile)); err != nil {
		remoteFailed(span, "upsert_user", err)
		// an account without a profile could sign in but never sign up again
		if derr := r.accounts.DeleteAccount(context.WithoutCancel(ctx), account.ID); derr != nil {
			remoteFailed(span, "delete_account", derr)
			r.log.Error("orphaned account after failed sign-up", zap.String("user_id", account.ID), zap.Error(derr))
		}
		return models.Session{}, fmt.Errorf("create profile: %w", err)
	}
	if err := r.store.Profiles().Upsert(ctx, mapper.UserProfileToEntity(profile)); err != nil {
		return models.Session{}, err
	}

	r.log.Info("account created", zap.String("user_id", account.ID))
	return r.issue(account.ID, email)
}

// SignIn checks the password and opens a session.
func (r *AuthRepo) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	ctx, span := tracer.Start(ctx, "AuthRepo.SignIn")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	account, err := r.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		remoteFailed(span, "get_account", err)
		return models.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	return r.issue(account.ID, account.Email)
}

// SignOut drops the user's push token so no further notifications reach
// the device.
func (r *AuthRepo) SignOut(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "AuthRepo.SignOut")
	defer span.End()

	if err := r.users.UpdateFCMToken(ctx, userID, ""); err != nil && !errors.Is(err, remote.ErrDocumentNotFound) {
		remoteFailed(span, "update_fcm_token", err)
		return err
	}
	return nil
}

// ValidateToken parses a session token.
func (r *AuthRepo) ValidateToken(_ context.Context, token string) (models.Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return models.Session{}, ErrInvalidToken
	}
	session := models.Session{UserID: claims.Subject, Email: claims.Email, Token: token}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// UpdateFCMToken stores the device push token.
func (r *AuthRepo) UpdateFCMToken(ctx context.Context, userID, token string) error {
	ctx, span := tracer.Start(ctx, "AuthRepo.UpdateFCMToken")
	defer span.End()

	if err := r.users.UpdateFCMToken(ctx, userID, token); err != nil {
		if errors.Is(err, remote.ErrDocumentNotFound) {
			return models.ErrUserProfileNotFound
		}
		remoteFailed(span, "update_fcm_token", err)
		return err
	}
	return nil
}

func (r *AuthRepo) issue(userID, email string) (models.Session, error) {
	issuedAt := now()
	expires := issuedAt.Add(r.ttl)
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "bondhub",
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign token: %w", err)
	}
	return models.Session{UserID: userID, Email: email, Token: signed, ExpiresAt: expires}, nil
}
