package repositories

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bondhub/internal/cache"
	"bondhub/internal/mapper"
	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/remote"
	"bondhub/internal/stream"
)

const defaultSearchLimit = 20

// UserProfileRepository reads and edits user profiles.
type UserProfileRepository interface {
	CreateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	ObserveProfile(ctx context.Context, userID string) *stream.Stream[*models.UserProfile]
	UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)
	SearchUsers(ctx context.Context, term, excludeID string, limit int) ([]models.UserProfile, error)
	Refresh(ctx context.Context, userID string) error
}

// UserProfileRepo mirrors the users collection into user_profiles.
type UserProfileRepo struct {
	users UserStore
	feed  remote.ChangeFeed
	store *cache.Store
	log   *zap.Logger
}

// NewUserProfileRepo constructs a UserProfileRepo.
func NewUserProfileRepo(users UserStore, store *cache.Store, log *zap.Logger) *UserProfileRepo {
	return &UserProfileRepo{users: users, store: store, log: log.Named("profiles")}
}

// WithChanges makes ObserveProfile follow remote edits of the profile for as
// long as it is observed, instead of pulling it once. Livesync only covers
// users connected to this node; this covers the profiles they look at.
func (r *UserProfileRepo) WithChanges(feed remote.ChangeFeed) *UserProfileRepo {
	r.feed = feed
	return r
}

// CreateProfile writes a new profile remotely, then caches it.
func (r *UserProfileRepo) CreateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "UserProfileRepo.CreateProfile")
	defer span.End()

	profile.LastUpdated = now()
	if err := r.users.UpsertUser(ctx, mapper.UserProfileToDocument(profile)); err != nil {
		remoteFailed(span, "upsert_user", err)
		r.log.Error("create profile failed", zap.String("user_id", profile.ID), zap.Error(err))
		return models.UserProfile{}, err
	}
	if err := r.store.Profiles().Upsert(ctx, mapper.UserProfileToEntity(profile)); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// GetProfile reads the remote profile and caches it. When the remote store
// is unreachable the cached copy is returned instead.
func (r *UserProfileRepo) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "UserProfileRepo.GetProfile")
	defer span.End()

	doc, err := r.users.GetUser(ctx, userID)
	if err == nil {
		if err := r.store.Profiles().Upsert(ctx, mapper.UserDocumentToEntity(doc)); err != nil {
			r.log.Warn("cache profile failed", zap.String("user_id", userID), zap.Error(err))
		}
		return mapper.UserProfileFromDocument(doc), nil
	}
	if errors.Is(err, remote.ErrDocumentNotFound) {
		return models.UserProfile{}, models.ErrUserProfileNotFound
	}
	remoteFailed(span, "get_user", err)

	cached, cerr := r.store.Profiles().Find(ctx, userID)
	if cerr != nil || cached == nil {
		return models.UserProfile{}, err
	}
	observability.IncCacheFallback("get_user")
	r.log.Warn("serving cached profile", zap.String("user_id", userID), zap.Error(err))
	return mapper.UserProfileFromEntity(*cached), nil
}

// ObserveProfile streams the cached profile, nil until it is first cached.
func (r *UserProfileRepo) ObserveProfile(ctx context.Context, userID string) *stream.Stream[*models.UserProfile] {
	fetch := func(ctx context.Context) (*models.UserProfile, error) {
		e, err := r.store.Profiles().Find(ctx, userID)
		if err != nil || e == nil {
			return nil, err
		}
		p := mapper.UserProfileFromEntity(*e)
		return &p, nil
	}
	refresh := func(ctx context.Context) error { return r.Refresh(ctx, userID) }
	if r.feed != nil {
		refresh = func(ctx context.Context) error { return r.follow(ctx, userID) }
	}
	return observeWithRefresh(ctx, r.store, r.log, "observe_profile", fetch, refresh, cache.TableUserProfiles)
}

// follow mirrors every remote version of userID's profile into the cache
// until ctx is done.
func (r *UserProfileRepo) follow(ctx context.Context, userID string) error {
	live := remote.SnapshotOf(ctx, r.feed,
		func(c remote.Change) bool { return c.Collection == remote.CollectionUsers && c.Key(0) == userID },
		func(ctx context.Context) (remote.UserDocument, error) { return r.users.GetUser(ctx, userID) },
	)
	defer live.Close()
	for {
		doc, ok := live.Next(ctx)
		if !ok {
			return live.Err()
		}
		if err := r.store.Profiles().Upsert(ctx, mapper.UserDocumentToEntity(doc)); err != nil {
			return err
		}
	}
}

// UpdateProfile overwrites the profile remotely, then in the cache.
func (r *UserProfileRepo) UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "UserProfileRepo.UpdateProfile")
	defer span.End()

	if profile.ID == "" {
		return models.UserProfile{}, models.ErrUserProfileNotFound
	}
	if _, err := r.users.GetUser(ctx, profile.ID); err != nil {
		if errors.Is(err, remote.ErrDocumentNotFound) {
			return models.UserProfile{}, models.ErrUserProfileNotFound
		}
		remoteFailed(span, "get_user", err)
		return models.UserProfile{}, err
	}
	profile.LastUpdated = now()
	if err := r.users.UpsertUser(ctx, mapper.UserProfileToDocument(profile)); err != nil {
		remoteFailed(span, "upsert_user", err)
		r.log.Error("update profile failed", zap.String("user_id", profile.ID), zap.Error(err))
		return models.UserProfile{}, err
	}
	if err := r.store.Profiles().Upsert(ctx, mapper.UserProfileToEntity(profile)); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// SearchUsers finds profiles whose display name starts with term.
func (r *UserProfileRepo) SearchUsers(ctx context.Context, term, excludeID string, limit int) ([]models.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "UserProfileRepo.SearchUsers")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return []models.UserProfile{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	docs, err := r.users.SearchUsers(ctx, term, limit)
	if err != nil {
		remoteFailed(span, "search_users", err)
		return nil, err
	}

	profiles := make([]models.UserProfile, 0, len(docs))
	entities := make([]cache.UserProfileEntity, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == excludeID {
			continue
		}
		profiles = append(profiles, mapper.UserProfileFromDocument(doc))
		entities = append(entities, mapper.UserDocumentToEntity(doc))
	}
	if err := r.store.Profiles().UpsertAll(ctx, entities); err != nil {
		r.log.Warn("cache search results failed", zap.Error(err))
	}
	return profiles, nil
}

// Refresh pulls one profile into the cache.
func (r *UserProfileRepo) Refresh(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "UserProfileRepo.Refresh")
	defer span.End()

	doc, err := r.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, remote.ErrDocumentNotFound) {
			remoteFailed(span, "get_user", err)
		}
		return err
	}
	return r.store.Profiles().Upsert(ctx, mapper.UserDocumentToEntity(doc))
}
