// Package review wires the pure scheduler to the card store: fetch,
// schedule, save, with a bounded retry loop around write conflicts.
package review

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studygenius/srs/internal/domain"
	"github.com/studygenius/srs/internal/sm2"
	"github.com/studygenius/srs/internal/storage"
)

// maxAttempts bounds the fetch-retry loop on version conflicts. Conflicts
// only happen when the same card is reviewed from two places at once, so
// a handful of attempts is plenty before surfacing the failure.
const maxAttempts = 3

// Store is the slice of the card store the service needs.
type Store interface {
	GetCard(id string) (domain.Card, error)
	SaveCard(card *domain.Card) error
	InsertReviewLog(log domain.ReviewLog) error
}

// Service applies graded reviews to stored cards.
type Service struct {
	store     Store
	scheduler *sm2.Scheduler
}

// NewService creates a review service.
func NewService(store Store, scheduler *sm2.Scheduler) *Service {
	return &Service{store: store, scheduler: scheduler}
}

// Review grades the card and persists its next state, retrying on version
// conflicts by re-fetching and re-scheduling. Returns the saved card.
func (s *Service) Review(cardID string, quality sm2.Quality, now time.Time) (domain.Card, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		card, err := s.store.GetCard(cardID)
		if err != nil {
			return domain.Card{}, err
		}

		next, err := s.scheduler.Schedule(card, quality, now)
		if err != nil {
			return domain.Card{}, err
		}

		if err := s.store.SaveCard(&next); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				lastErr = err
				continue
			}
			return domain.Card{}, err
		}

		s.record(next, quality, now)
		return next, nil
	}
	return domain.Card{}, fmt.Errorf("review: card %s: gave up after %d attempts: %w", cardID, maxAttempts, lastErr)
}

// record appends the review to the history. Log failures are reported but
// never fail the review: the schedule update is already durable.
func (s *Service) record(card domain.Card, quality sm2.Quality, now time.Time) {
	err := s.store.InsertReviewLog(domain.ReviewLog{
		CardID:      card.ID,
		Quality:     int(quality),
		ReviewedAt:  now,
		EaseFactor:  card.EaseFactor,
		Interval:    card.Interval,
		Repetitions: card.Repetitions,
		Phase:       card.Phase,
	})
	if err != nil {
		slog.Warn("failed to record review log", "card", card.ID, "error", err)
	}
}
