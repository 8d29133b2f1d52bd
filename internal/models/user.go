package models

import "time"

// UserProfile is the identity record created at sign-up.
type UserProfile struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	DisplayName          string    `json:"display_name"`
	ProfilePictureURL    string    `json:"profile_picture_url,omitempty"`
	ThumbnailURL         string    `json:"thumbnail_url,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	ProfileSetupComplete bool      `json:"profile_setup_complete"`
	LastUpdated          time.Time `json:"last_updated"`
}

// Session is handed out after a successful sign-up or sign-in.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
