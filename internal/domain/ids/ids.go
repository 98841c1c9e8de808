// Package ids mints and validates the public identifiers used across the API.
// Every entity is addressed externally by a ULID; lexicographic order matches
// creation order, which keeps keyset pagination and default sorts cheap.
package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID = errors.New("invalid ULID")
)

// New generates a new ULID string.
func New() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustNew generates a new ULID string or panics. Only for tests and seeding.
func MustNew() string {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

// IsULID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

// Validate validates a ULID string.
func Validate(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}
