package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh event id. Ids are UUIDv7 strings: they embed the wall
// clock in milliseconds and sort in generation order within one process.
func New() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return u.String(), nil
}

// Time returns the creation time embedded in an id produced by New.
func Time(id string) (time.Time, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	if u.Version() != 7 {
		return time.Time{}, fmt.Errorf("invalid id %q: not time-ordered", id)
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), nil
}
