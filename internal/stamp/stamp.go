// Package stamp provides opaque version-stamp generation backed by nanoid.
package stamp

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet defines the character set used for stamps.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of characters in a stamp.
var Length = 21

// New returns a fresh version stamp. Stamps are regenerated on every write
// so cached copies can be detected as stale by comparison.
func New() (string, error) {
	s, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("stamp: %w", err)
	}
	return s, nil
}
