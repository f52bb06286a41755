// Package storage persists cards, decks, sources and review logs in sqlite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studygenius/srs/internal/domain"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// Sentinel errors for store operations. Check with errors.Is.
var (
	// ErrNotFound marks a lookup miss.
	ErrNotFound = errors.New("storage: not found")

	// ErrConflict marks an optimistic-concurrency collision: the card
	// changed between GetCard and SaveCard. Callers recover by re-fetching
	// and re-applying the schedule.
	ErrConflict = errors.New("storage: version conflict")
)

// DB wraps the sqlite connection.
type DB struct {
	conn *sql.DB
}

// Open connects to the sqlite database at dsn and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const cardColumns = `id, deck_id, source_id, front, back, hint,
	ease_factor, interval, repetitions, lapses, due_at, phase, version,
	created_at, reviewed_at`

// InsertCard stores a freshly authored card. The sourceID records which
// configured source the card came from; 0 means none.
func (db *DB) InsertCard(card domain.Card, sourceID int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		nullID(card.DeckID),
		nullID(sourceID),
		card.Front,
		card.Back,
		card.Hint,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		card.Lapses,
		card.DueAt.UTC(),
		card.Phase.String(),
		card.Version,
		card.CreatedAt.UTC(),
		nullTime(card.ReviewedAt),
	)
	if err != nil {
		return fmt.Errorf("insert card %s: %w", card.ID, err)
	}
	return nil
}

// GetCard retrieves one card by ID. Returns ErrNotFound on a miss.
func (db *DB) GetCard(id string) (domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
		}
		return domain.Card{}, fmt.Errorf("get card %s: %w", id, err)
	}
	return card, nil
}

// SaveCard replaces the stored review state of the card, guarded by the
// card's version. On success the card's Version is bumped in place; if the
// stored row changed since it was read, SaveCard fails with ErrConflict.
func (db *DB) SaveCard(card *domain.Card) error {
	res, err := db.conn.Exec(`
		UPDATE cards
		SET ease_factor = ?, interval = ?, repetitions = ?, lapses = ?,
		    due_at = ?, phase = ?, reviewed_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		card.Lapses,
		card.DueAt.UTC(),
		card.Phase.String(),
		nullTime(card.ReviewedAt),
		card.ID,
		card.Version,
	)
	if err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	if n == 0 {
		if _, err := db.GetCard(card.ID); errors.Is(err, ErrNotFound) {
			return fmt.Errorf("card %s: %w", card.ID, ErrNotFound)
		}
		return fmt.Errorf("card %s at version %d: %w", card.ID, card.Version, ErrConflict)
	}
	card.Version++
	return nil
}

// DueCards returns learning and review cards due at or before the given
// time, earliest due first with the card ID as a deterministic tiebreak.
func (db *DB) DueCards(before time.Time, limit int) ([]domain.Card, error) {
	rows, err := db.conn.Query(`
		SELECT `+cardColumns+` FROM cards
		WHERE due_at <= ? AND phase != 'new'
		ORDER BY due_at ASC, id ASC
		LIMIT ?
	`, before.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query due cards: %w", err)
	}
	return collectCards(rows)
}

// NewCards returns never-reviewed cards in creation order.
func (db *DB) NewCards(limit int) ([]domain.Card, error) {
	rows, err := db.conn.Query(`
		SELECT `+cardColumns+` FROM cards
		WHERE phase = 'new'
		ORDER BY rowid ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query new cards: %w", err)
	}
	return collectCards(rows)
}

// CountDue returns the number of learning/review cards due before the
// given time, and the number of new cards, for the session summary view.
func (db *DB) CountDue(before time.Time) (due, fresh int, err error) {
	err = db.conn.QueryRow(`
		SELECT COUNT(*) FROM cards WHERE due_at <= ? AND phase != 'new'
	`, before.UTC()).Scan(&due)
	if err != nil {
		return 0, 0, fmt.Errorf("count due cards: %w", err)
	}
	err = db.conn.QueryRow(`SELECT COUNT(*) FROM cards WHERE phase = 'new'`).Scan(&fresh)
	if err != nil {
		return 0, 0, fmt.Errorf("count new cards: %w", err)
	}
	return due, fresh, nil
}

// CardsBySource returns all cards belonging to the given source, for sync
// reconciliation.
func (db *DB) CardsBySource(sourceID int64) ([]domain.Card, error) {
	rows, err := db.conn.Query(`
		SELECT `+cardColumns+` FROM cards WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query cards for source %d: %w", sourceID, err)
	}
	return collectCards(rows)
}

// DeleteCard removes a card and its review history.
func (db *DB) DeleteCard(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM review_logs WHERE card_id = ?`, id); err != nil {
		return fmt.Errorf("delete logs for card %s: %w", id, err)
	}
	if _, err := db.conn.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	return nil
}

// GetOrCreateDeck returns the ID of the named deck, creating it if needed.
func (db *DB) GetOrCreateDeck(name string, now time.Time) (int64, error) {
	var id int64
	err := db.conn.QueryRow(`SELECT id FROM decks WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find deck %s: %w", name, err)
	}
	res, err := db.conn.Exec(`INSERT INTO decks (name, created_at) VALUES (?, ?)`, name, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("create deck %s: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create deck %s: %w", name, err)
	}
	return id, nil
}

// Source is a configured card origin: a local directory or a git URL.
type Source struct {
	ID          int64
	Path        string
	Type        string // "local" or "git"
	LastScanned sql.NullTime
}

// InsertSource registers a new source and returns its ID.
func (db *DB) InsertSource(path, typ string) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO sources (path, type) VALUES (?, ?)`, path, typ)
	if err != nil {
		return 0, fmt.Errorf("insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath returns the source with the given path, or ErrNotFound.
func (db *DB) FindSourceByPath(path string) (*Source, error) {
	var s Source
	err := db.conn.QueryRow(`
		SELECT id, path, type, last_scanned FROM sources WHERE path = ?
	`, path).Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("source %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("find source %s: %w", path, err)
	}
	return &s, nil
}

// AllSources returns every configured source.
func (db *DB) AllSources() ([]Source, error) {
	rows, err := db.conn.Query(`SELECT id, path, type, last_scanned FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source registration. Cards already imported from
// it are kept; the next sync of a re-added source dedups by content hash.
func (db *DB) DeleteSource(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete source %d: %w", id, err)
	}
	return nil
}

// TouchSource updates the source's last_scanned timestamp.
func (db *DB) TouchSource(id int64, now time.Time) error {
	if _, err := db.conn.Exec(`
		UPDATE sources SET last_scanned = ? WHERE id = ?
	`, now.UTC(), id); err != nil {
		return fmt.Errorf("touch source %d: %w", id, err)
	}
	return nil
}

// InsertReviewLog appends one review event to the history.
func (db *DB) InsertReviewLog(log domain.ReviewLog) error {
	_, err := db.conn.Exec(`
		INSERT INTO review_logs (card_id, quality, reviewed_at, ease_factor, interval, repetitions, phase)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		log.CardID,
		log.Quality,
		log.ReviewedAt.UTC(),
		log.EaseFactor,
		log.Interval,
		log.Repetitions,
		log.Phase.String(),
	)
	if err != nil {
		return fmt.Errorf("insert review log for card %s: %w", log.CardID, err)
	}
	return nil
}

// RecentLogs returns the most recent review events for a card, newest first.
func (db *DB) RecentLogs(cardID string, limit int) ([]domain.ReviewLog, error) {
	rows, err := db.conn.Query(`
		SELECT card_id, quality, reviewed_at, ease_factor, interval, repetitions, phase
		FROM review_logs
		WHERE card_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("query logs for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var logs []domain.ReviewLog
	for rows.Next() {
		var (
			log   domain.ReviewLog
			phase string
		)
		if err := rows.Scan(&log.CardID, &log.Quality, &log.ReviewedAt, &log.EaseFactor, &log.Interval, &log.Repetitions, &phase); err != nil {
			return nil, fmt.Errorf("scan review log: %w", err)
		}
		if err := log.Phase.UnmarshalText([]byte(phase)); err != nil {
			return nil, fmt.Errorf("scan review log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		card       domain.Card
		deckID     sql.NullInt64
		sourceID   sql.NullInt64
		phase      string
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&card.ID,
		&deckID,
		&sourceID,
		&card.Front,
		&card.Back,
		&card.Hint,
		&card.EaseFactor,
		&card.Interval,
		&card.Repetitions,
		&card.Lapses,
		&card.DueAt,
		&phase,
		&card.Version,
		&card.CreatedAt,
		&reviewedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	card.DeckID = deckID.Int64
	if reviewedAt.Valid {
		card.ReviewedAt = reviewedAt.Time
	}
	if err := card.Phase.UnmarshalText([]byte(phase)); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

func collectCards(rows *sql.Rows) ([]domain.Card, error) {
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
