// Package mapper translates between remote documents, cache rows and domain
// objects. Every function is pure except UserProfileToEntity, which stamps
// the current time.
package mapper

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownValue marks a document or row carrying an enum value this
// version does not understand.
var ErrUnknownValue = errors.New("unknown value")

// Now is the clock used for LastUpdated stamps.
var Now = time.Now

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func unknown(field, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownValue, field, value)
}
