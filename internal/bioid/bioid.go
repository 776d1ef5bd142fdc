// Package bioid allocates the short public identifiers that name a bio and
// its page.
//
// An identifier is the first Length hex characters of a random (version 4)
// UUID, e.g. "3f9a0c12". That leaves 32 bits of randomness: plenty for the
// expected volume, but not enough to ignore clashes, so the archive still
// checks for collisions on insert.
package bioid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in an identifier.
const Length = 8

// Generator produces candidate identifiers. The archive takes one so tests
// can force collisions.
type Generator func() (string, error)

// New returns a fresh random identifier.
func New() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("bioid: reading randomness: %w", err)
	}
	return strings.ReplaceAll(u.String(), "-", "")[:Length], nil
}

// Valid reports whether s has the shape of an identifier. Anything that
// fails this check cannot name a stored page, which also keeps path
// separators and ".." away from the storage layer.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
