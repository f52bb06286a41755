package review

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/studygenius/srs/internal/domain"
	"github.com/studygenius/srs/internal/sm2"
	"github.com/studygenius/srs/internal/storage"
)

var day0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// fakeStore keeps one card in memory and can inject save conflicts.
type fakeStore struct {
	card      domain.Card
	missing   bool
	conflicts int // number of saves to reject with ErrConflict
	saves     int
	logs      []domain.ReviewLog
}

func (f *fakeStore) GetCard(id string) (domain.Card, error) {
	if f.missing {
		return domain.Card{}, fmt.Errorf("card %s: %w", id, storage.ErrNotFound)
	}
	return f.card, nil
}

func (f *fakeStore) SaveCard(card *domain.Card) error {
	if f.conflicts > 0 {
		f.conflicts--
		// A conflicting writer got there first; bump the stored version the
		// way the real store would.
		f.card.Version++
		return fmt.Errorf("card %s: %w", card.ID, storage.ErrConflict)
	}
	f.saves++
	card.Version++
	f.card = *card
	return nil
}

func (f *fakeStore) InsertReviewLog(log domain.ReviewLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func newCardStore() *fakeStore {
	return &fakeStore{card: domain.NewCard("abc", 0, "front", "back", "", day0)}
}

func TestReviewPersistsScheduledState(t *testing.T) {
	store := newCardStore()
	svc := NewService(store, sm2.New(sm2.Config{}))

	got, err := svc.Review("abc", 4, day0)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.Interval != 1 || got.Repetitions != 1 {
		t.Errorf("state = %d/%d, want interval 1, repetitions 1", got.Interval, got.Repetitions)
	}
	if store.card.Interval != 1 {
		t.Errorf("stored interval = %d, want 1", store.card.Interval)
	}
	if len(store.logs) != 1 {
		t.Fatalf("got %d review logs, want 1", len(store.logs))
	}
	if store.logs[0].Quality != 4 || store.logs[0].CardID != "abc" {
		t.Errorf("log = %+v", store.logs[0])
	}
}

func TestReviewRetriesOnConflict(t *testing.T) {
	store := newCardStore()
	store.conflicts = 2
	svc := NewService(store, sm2.New(sm2.Config{}))

	if _, err := svc.Review("abc", 4, day0); err != nil {
		t.Fatalf("Review should survive 2 conflicts: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestReviewGivesUpAfterBoundedAttempts(t *testing.T) {
	store := newCardStore()
	store.conflicts = 10
	svc := NewService(store, sm2.New(sm2.Config{}))

	_, err := svc.Review("abc", 4, day0)
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("err = %v, want wrapped ErrConflict", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0", store.saves)
	}
	// 10 injected conflicts, only maxAttempts consumed.
	if store.conflicts != 10-maxAttempts {
		t.Errorf("attempts = %d, want %d", 10-store.conflicts, maxAttempts)
	}
}

func TestReviewUnknownCard(t *testing.T) {
	store := newCardStore()
	store.missing = true
	svc := NewService(store, sm2.New(sm2.Config{}))

	if _, err := svc.Review("abc", 4, day0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReviewInvalidQuality(t *testing.T) {
	store := newCardStore()
	svc := NewService(store, sm2.New(sm2.Config{}))

	if _, err := svc.Review("abc", 9, day0); !errors.Is(err, sm2.ErrInvalidQuality) {
		t.Errorf("err = %v, want ErrInvalidQuality", err)
	}
	if store.saves != 0 {
		t.Error("invalid quality must not write")
	}
}
