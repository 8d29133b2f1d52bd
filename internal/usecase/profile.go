package usecase

import (
	"context"

	"bondhub/internal/models"
	"bondhub/internal/repositories"
	"bondhub/internal/stream"
)

type GetUserProfile struct{ profiles repositories.UserProfileRepository }

func NewGetUserProfile(profiles repositories.UserProfileRepository) *GetUserProfile {
	return &GetUserProfile{profiles: profiles}
}

func (u *GetUserProfile) Execute(ctx context.Context, userID string) (models.UserProfile, error) {
	return u.profiles.GetProfile(ctx, userID)
}

type ObserveUserProfile struct{ profiles repositories.UserProfileRepository }

func NewObserveUserProfile(profiles repositories.UserProfileRepository) *ObserveUserProfile {
	return &ObserveUserProfile{profiles: profiles}
}

func (u *ObserveUserProfile) Execute(ctx context.Context, userID string) *stream.Stream[*models.UserProfile] {
	return u.profiles.ObserveProfile(ctx, userID)
}

// ProfileChanges lists the editable profile fields; nil leaves a field as is.
type ProfileChanges struct {
	DisplayName       *string
	Bio               *string
	ProfilePictureURL *string
	ThumbnailURL      *string
}

type UpdateUserProfile struct{ profiles repositories.UserProfileRepository }

func NewUpdateUserProfile(profiles repositories.UserProfileRepository) *UpdateUserProfile {
	return &UpdateUserProfile{profiles: profiles}
}

// Execute applies changes on top of the current profile. A profile with a
// display name counts as set up.
func (u *UpdateUserProfile) Execute(ctx context.Context, userID string, changes ProfileChanges) (models.UserProfile, error) {
	profile, err := u.profiles.GetProfile(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if changes.DisplayName != nil {
		profile.DisplayName = *changes.DisplayName
	}
	if changes.Bio != nil {
		profile.Bio = *changes.Bio
	}
	if changes.ProfilePictureURL != nil {
		profile.ProfilePictureURL = *changes.ProfilePictureURL
	}
	if changes.ThumbnailURL != nil {
		profile.ThumbnailURL = *changes.ThumbnailURL
	}
	profile.ProfileSetupComplete = profile.DisplayName != ""
	return u.profiles.UpdateProfile(ctx, profile)
}

type SearchUsers struct{ profiles repositories.UserProfileRepository }

func NewSearchUsers(profiles repositories.UserProfileRepository) *SearchUsers {
	return &SearchUsers{profiles: profiles}
}

func (u *SearchUsers) Execute(ctx context.Context, term, callerID string, limit int) ([]models.UserProfile, error) {
	return u.profiles.SearchUsers(ctx, term, callerID, limit)
}
