package cache

import (
	"context"
	"database/sql"
	"errors"
)

const upsertProfile = `INSERT OR REPLACE INTO user_profiles
    (id, email, display_name, profile_picture_url, profile_picture_thumbnail_url, bio, profile_setup_complete, last_updated)
    VALUES (:id, :email, :display_name, :profile_picture_url, :profile_picture_thumbnail_url, :bio, :profile_setup_complete, :last_updated)`

// ProfileDAO queries user_profiles.
type ProfileDAO struct {
	s *Store
}

// Upsert inserts or replaces a profile.
func (d *ProfileDAO) Upsert(ctx context.Context, e UserProfileEntity) error {
	if _, err := d.s.db.NamedExecContext(ctx, upsertProfile, e); err != nil {
		return err
	}
	d.s.invalidate(TableUserProfiles)
	return nil
}

// UpsertAll inserts or replaces several profiles in one transaction.
func (d *ProfileDAO) UpsertAll(ctx context.Context, entities []UserProfileEntity) error {
	if len(entities) == 0 {
		return nil
	}
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, e := range entities {
		if _, err := tx.NamedExecContext(ctx, upsertProfile, e); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	d.s.invalidate(TableUserProfiles)
	return nil
}

// Get returns a cached profile or ErrNotFound.
func (d *ProfileDAO) Get(ctx context.Context, id string) (UserProfileEntity, error) {
	var e UserProfileEntity
	err := d.s.db.GetContext(ctx, &e, `SELECT * FROM user_profiles WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return UserProfileEntity{}, ErrNotFound
	}
	return e, err
}

// Find returns a pointer to the cached profile, nil when absent.
func (d *ProfileDAO) Find(ctx context.Context, id string) (*UserProfileEntity, error) {
	e, err := d.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes a profile.
func (d *ProfileDAO) Delete(ctx context.Context, id string) error {
	if _, err := d.s.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE id=?`, id); err != nil {
		return err
	}
	d.s.invalidate(TableUserProfiles)
	return nil
}
