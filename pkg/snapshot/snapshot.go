// Package snapshot trades long encoded state for short opaque IDs.
//
// Address bars and shared links have practical length limits. A Shortener
// watches the encoded text and, past a threshold, parks it in a Store and
// hands out a reference token instead; Expand turns the token back into the
// original text. Stores are pluggable: in-memory for tests and single nodes,
// S3 for anything shared.
package snapshot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/vango-dev/urlstate/internal/errors"
)

// ErrNotFound is returned when a snapshot ID has no stored text.
var ErrNotFound = errors.Newf(errors.CategoryUsage, "snapshot not found")

// Store persists encoded state text under generated IDs.
type Store interface {
	// Save persists text and returns its ID.
	Save(ctx context.Context, text string) (string, error)

	// Load returns the text stored under id, or ErrNotFound.
	Load(ctx context.Context, id string) (string, error)
}

// refPrefix marks a reference token. It is outside every default grammar
// token, so a reference is never a valid encoded state.
const refPrefix = "~"

// NewID returns a random 16-byte hex ID.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("snapshot: rand failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// Shortener swaps oversized state text for store references.
type Shortener struct {
	store     Store
	threshold int
}

// NewShortener creates a Shortener. Text longer than threshold bytes is
// stored and replaced by a reference; shorter text passes through.
func NewShortener(store Store, threshold int) *Shortener {
	return &Shortener{store: store, threshold: threshold}
}

// Shorten returns text unchanged when it fits, otherwise a reference token.
func (s *Shortener) Shorten(ctx context.Context, text string) (string, error) {
	if len(text) <= s.threshold {
		return text, nil
	}
	id, err := s.store.Save(ctx, text)
	if err != nil {
		return "", err
	}
	return refPrefix + id, nil
}

// Expand resolves a reference token back to its text. Plain text passes
// through unchanged.
func (s *Shortener) Expand(ctx context.Context, text string) (string, error) {
	id, ok := strings.CutPrefix(text, refPrefix)
	if !ok {
		return text, nil
	}
	return s.store.Load(ctx, id)
}

// IsRef reports whether text is a reference token.
func IsRef(text string) bool {
	return strings.HasPrefix(text, refPrefix)
}
