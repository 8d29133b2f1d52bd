package mapper

import (
	"bondhub/internal/cache"
	"bondhub/internal/models"
	"bondhub/internal/remote"
)

// UserProfileFromDocument reads a users document. Missing optional fields
// become empty strings.
func UserProfileFromDocument(doc remote.UserDocument) models.UserProfile {
	return models.UserProfile{
		ID:                   doc.ID,
		Email:                doc.Email,
		DisplayName:          doc.DisplayName,
		ProfilePictureURL:    doc.ProfilePictureURL.String,
		ThumbnailURL:         doc.ProfilePictureThumbnailURL.String,
		Bio:                  doc.Bio.String,
		ProfileSetupComplete: doc.ProfileSetupComplete,
		LastUpdated:          doc.LastUpdated.UTC(),
	}
}

// UserProfileToDocument builds a users document. The push token is left
// unset so that an upsert keeps the stored one.
func UserProfileToDocument(p models.UserProfile) remote.UserDocument {
	return remote.UserDocument{
		ID:                         p.ID,
		Email:                      p.Email,
		DisplayName:                p.DisplayName,
		ProfilePictureURL:          nullString(p.ProfilePictureURL),
		ProfilePictureThumbnailURL: nullString(p.ThumbnailURL),
		Bio:                        nullString(p.Bio),
		ProfileSetupComplete:       p.ProfileSetupComplete,
		LastUpdated:                p.LastUpdated,
	}
}

// UserProfileFromEntity reads a cached profile.
func UserProfileFromEntity(e cache.UserProfileEntity) models.UserProfile {
	return models.UserProfile{
		ID:                   e.ID,
		Email:                e.Email,
		DisplayName:          e.DisplayName,
		ProfilePictureURL:    e.ProfilePictureURL,
		ThumbnailURL:         e.ThumbnailURL,
		Bio:                  e.Bio,
		ProfileSetupComplete: e.ProfileSetupComplete,
		LastUpdated:          fromMillis(e.LastUpdated),
	}
}

// UserProfileToEntity builds a cache row stamped with the current time.
func UserProfileToEntity(p models.UserProfile) cache.UserProfileEntity {
	return cache.UserProfileEntity{
		ID:                   p.ID,
		Email:                p.Email,
		DisplayName:          p.DisplayName,
		ProfilePictureURL:    p.ProfilePictureURL,
		ThumbnailURL:         p.ThumbnailURL,
		Bio:                  p.Bio,
		ProfileSetupComplete: p.ProfileSetupComplete,
		LastUpdated:          Now().UnixMilli(),
	}
}

// UserDocumentToEntity mirrors a users document into the cache, keeping the
// document's own timestamp.
func UserDocumentToEntity(doc remote.UserDocument) cache.UserProfileEntity {
	e := UserProfileToEntity(UserProfileFromDocument(doc))
	e.LastUpdated = toMillis(doc.LastUpdated)
	return e
}
