// Package content defines the authored text of a card and its stable
// identity. Card IDs are content hashes, so re-syncing a deck never
// duplicates cards and editing a card's text retires the old review state.
package content

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Entry is the authored portion of a card, before any review state exists.
type Entry struct {
	Front string
	Back  string
	Hint  string
}

// Normalize returns the canonical text used for hashing. Each field is
// lowercased, trimmed and has its line endings unified before joining, so
// cosmetic edits in the source file do not change a card's identity.
func Normalize(e Entry) string {
	clean := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Joined with newlines so adjacent fields cannot collide, e.g. a front
	// ending in "x" and a back starting with "y" vs a front ending in "xy".
	return strings.Join([]string{clean(e.Front), clean(e.Back), clean(e.Hint)}, "\n")
}

// Hash returns the entry's SHA-256 content hash as a hex string.
func Hash(e Entry) string {
	sum := sha256.Sum256([]byte(Normalize(e)))
	return fmt.Sprintf("%x", sum)
}
