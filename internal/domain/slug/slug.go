// Package slug derives the URL-safe identifiers used for public entity
// lookups. Derivation is a pure function invoked by the services on create
// and on title change, never a storage-layer hook, so the transform stays
// testable in isolation.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonSlugRunes matches everything outside [a-z0-9-].
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches runs of two or more hyphens.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxAttempts bounds the collision-suffix loop. Hitting the bound means the
// collection holds over a hundred entries with the same base title.
const maxAttempts = 100

// Make converts a title into a lowercase, hyphenated, ASCII slug.
// Accented characters are transliterated by decomposition; anything left
// outside [a-z0-9-] is dropped.
func Make(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, title)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = nonSlugRunes.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if result == "" {
		result = "untitled"
	}
	return result
}

// IsValid reports whether s is a well-formed slug.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

// Exists reports whether a candidate slug is already taken within a
// collection. excludeID carries the id of the entity being updated so its own
// slug does not count as a collision.
type Exists func(ctx context.Context, slug string, excludeID string) (bool, error)

// Unique derives a slug from title and resolves collisions by appending a
// numeric suffix: slug, slug-1, slug-2, and so on.
func Unique(ctx context.Context, title string, excludeID string, exists Exists) (string, error) {
	base := Make(title)
	candidate := base
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", fmt.Errorf("could not find a free slug for %q after %d attempts", base, maxAttempts)
}
