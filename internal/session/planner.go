// Package session builds bounded, deterministic study queues.
package session

import (
	"fmt"
	"time"

	"github.com/studygenius/srs/internal/domain"
)

// Default session caps, applied when a Planner is built from zero values.
const (
	DefaultMaxCards    = 20
	DefaultMaxNewCards = 10
)

// CardSource is the slice of the store the planner needs.
type CardSource interface {
	// DueCards returns learning/review cards due at or before the given
	// time, earliest due first with ID as tiebreak, capped at limit.
	DueCards(before time.Time, limit int) ([]domain.Card, error)

	// NewCards returns never-reviewed cards in creation order, capped at
	// limit.
	NewCards(limit int) ([]domain.Card, error)
}

// Planner selects which cards make up one study sitting: due cards first,
// then new cards to backfill remaining capacity.
type Planner struct {
	maxCards    int // hard cap on session length
	maxNewCards int // soft cap on never-reviewed cards per session
}

// NewPlanner creates a planner with the given caps. Non-positive maxCards
// and negative maxNewCards fall back to the defaults; a zero maxNewCards
// disables new-card backfill entirely.
func NewPlanner(maxCards, maxNewCards int) Planner {
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	if maxNewCards < 0 {
		maxNewCards = DefaultMaxNewCards
	}
	return Planner{maxCards: maxCards, maxNewCards: maxNewCards}
}

// Build returns the ordered card queue for a session starting at now.
// Given identical store state and now, the result is identical: ordering
// comes entirely from the store queries, never from randomness or the
// wall clock. Both queries are LIMIT-bounded, so Build is O(session size)
// regardless of collection size.
func (p Planner) Build(store CardSource, now time.Time) ([]domain.Card, error) {
	queue, err := store.DueCards(now, p.maxCards)
	if err != nil {
		return nil, fmt.Errorf("session: load due cards: %w", err)
	}

	remaining := p.maxCards - len(queue)
	if remaining > p.maxNewCards {
		remaining = p.maxNewCards
	}
	if remaining <= 0 {
		return queue, nil
	}

	fresh, err := store.NewCards(remaining)
	if err != nil {
		return nil, fmt.Errorf("session: load new cards: %w", err)
	}
	return append(queue, fresh...), nil
}
