package cache

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

const idSeparator = ","

// ErrInvalidID is returned when an id cannot be stored in an IDList.
var ErrInvalidID = errors.New("id contains the list separator")

// IDList stores a list of ids as one comma-joined column. There is no
// escaping, so ids containing a comma are rejected.
type IDList []string

// EncodeIDs joins ids with the separator.
func EncodeIDs(ids []string) (string, error) {
	for _, id := range ids {
		if strings.Contains(id, idSeparator) {
			return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return strings.Join(ids, idSeparator), nil
}

// DecodeIDs splits a stored column. The empty string is the empty list.
func DecodeIDs(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, idSeparator)
}

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	return EncodeIDs(l)
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = IDList{}
	case string:
		*l = DecodeIDs(v)
	case []byte:
		*l = DecodeIDs(string(v))
	default:
		return fmt.Errorf("scan IDList from %T", src)
	}
	return nil
}
