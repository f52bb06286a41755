// Package sm2 implements the SM-2 spaced repetition scheduling algorithm.
//
// Schedule is a pure function over a card's review state: it never touches
// storage or the real clock, which keeps the interval math trivially
// testable. Callers persist the returned card themselves.
package sm2

import (
	"fmt"
	"math"
	"time"

	"github.com/studygenius/srs/internal/domain"
)

const (
	// PassThreshold is the minimum quality that counts as a successful
	// recall. Anything below it is a lapse.
	PassThreshold = 3

	// lapseEasePenalty is subtracted from the ease factor on every lapse.
	lapseEasePenalty = 0.20
)

// Config tunes a Scheduler. The zero value applies no interval cap.
type Config struct {
	// MaxInterval caps the computed interval in days. Zero means uncapped;
	// production deployments typically set something like 36500.
	MaxInterval int
}

// Scheduler computes the next review state for graded cards.
type Scheduler struct {
	maxInterval int
}

// New creates a Scheduler from the given config.
func New(cfg Config) *Scheduler {
	return &Scheduler{maxInterval: cfg.MaxInterval}
}

// Schedule grades the card at the given time and returns its next state.
// The input card is not mutated.
//
// A lapse (quality < 3) resets the repetition streak and pins the interval
// to one day. A success grows the interval along the 1/6/interval*ease
// ladder and moves the card into the review phase from the second
// consecutive success onward. Quality 3 passes but still lowers the ease
// factor slightly: barely recalling a card should not speed up its growth.
func (s *Scheduler) Schedule(card domain.Card, quality Quality, now time.Time) (domain.Card, error) {
	if !quality.Valid() {
		return domain.Card{}, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	if err := validateCard(card); err != nil {
		return domain.Card{}, err
	}

	next := card

	if quality.Passing() {
		next.EaseFactor = nextEase(card.EaseFactor, quality)
		next.Repetitions = card.Repetitions + 1

		switch {
		case next.Repetitions == 1:
			next.Interval = 1
		case next.Repetitions == 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(card.Interval) * next.EaseFactor))
		}

		if next.Repetitions >= 2 {
			next.Phase = domain.Review
		} else {
			next.Phase = domain.Learning
		}
	} else {
		next.EaseFactor = math.Max(domain.MinEaseFactor, card.EaseFactor-lapseEasePenalty)
		next.Repetitions = 0
		next.Lapses = card.Lapses + 1
		next.Interval = 1
		next.Phase = domain.Learning
	}

	// Forward progress: never schedule a card due-now again.
	if next.Interval < 1 {
		next.Interval = 1
	}
	if s.maxInterval > 0 && next.Interval > s.maxInterval {
		next.Interval = s.maxInterval
	}

	next.DueAt = now.AddDate(0, 0, next.Interval)
	next.ReviewedAt = now
	return next, nil
}

// nextEase applies the SM-2 ease update for a passing grade:
// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at 1.3.
func nextEase(ease float64, quality Quality) float64 {
	q := float64(quality)
	next := ease + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	return math.Max(domain.MinEaseFactor, next)
}

// validateCard rejects cards whose state could only come from upstream data
// corruption. The store enforces these invariants on write, so a failure
// here means the record should be quarantined, not silently repaired.
func validateCard(card domain.Card) error {
	switch {
	case card.Interval < 0:
		return fmt.Errorf("%w: negative interval %d", ErrInvalidState, card.Interval)
	case card.Repetitions < 0:
		return fmt.Errorf("%w: negative repetitions %d", ErrInvalidState, card.Repetitions)
	case card.Lapses < 0:
		return fmt.Errorf("%w: negative lapses %d", ErrInvalidState, card.Lapses)
	case card.EaseFactor < domain.MinEaseFactor:
		return fmt.Errorf("%w: ease factor %.2f below %.1f", ErrInvalidState, card.EaseFactor, domain.MinEaseFactor)
	case !card.Phase.Valid():
		return fmt.Errorf("%w: phase %d", ErrInvalidState, int(card.Phase))
	}
	return nil
}
