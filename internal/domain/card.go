package domain

import "time"

// Scheduling defaults for freshly authored cards.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Card is one flashcard together with its review state. The ID is the
// content hash of the card (see internal/content), so the same card text
// always maps to the same row regardless of which source file it came from.
type Card struct {
	ID     string
	DeckID int64

	Front string
	Back  string
	Hint  string

	EaseFactor  float64
	Interval    int // days until the next review
	Repetitions int // consecutive passing reviews since the last lapse
	Lapses      int // lifetime count of failed reviews
	DueAt       time.Time
	Phase       Phase

	// Version guards the read-modify-write cycle: SaveCard only succeeds
	// when the stored version still matches.
	Version int64

	CreatedAt  time.Time
	ReviewedAt time.Time // zero before the first review
}

// NewCard creates an unreviewed card that is due immediately.
func NewCard(id string, deckID int64, front, back, hint string, now time.Time) Card {
	return Card{
		ID:         id,
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Hint:       hint,
		EaseFactor: DefaultEaseFactor,
		Interval:   0,
		Phase:      New,
		DueAt:      now,
		Version:    1,
		CreatedAt:  now,
	}
}

// Due reports whether the card is eligible for review at the given time.
func (c Card) Due(now time.Time) bool {
	return !c.DueAt.After(now)
}

// ReviewLog records a single graded review event along with the card state
// that resulted from it. Logs are append-only and exist for analytics; the
// scheduler never reads them back.
type ReviewLog struct {
	CardID      string
	Quality     int
	ReviewedAt  time.Time
	EaseFactor  float64
	Interval    int
	Repetitions int
	Phase       Phase
}

// Deck groups cards that were authored together, typically one markdown file.
type Deck struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
