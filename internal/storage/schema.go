package storage

const schema = `
-- One row per flashcard. The primary key is the content hash of the card
-- text; version backs the optimistic-concurrency check in SaveCard.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    deck_id INTEGER,
    source_id INTEGER,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    hint TEXT NOT NULL DEFAULT '',
    ease_factor REAL NOT NULL DEFAULT 2.5,
    interval INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    lapses INTEGER NOT NULL DEFAULT 0,
    due_at DATETIME NOT NULL,
    phase TEXT NOT NULL DEFAULT 'new',
    version INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    reviewed_at DATETIME,

    FOREIGN KEY(deck_id) REFERENCES decks(id),
    FOREIGN KEY(source_id) REFERENCES sources(id)
);

CREATE INDEX IF NOT EXISTS cards_due_at_idx ON cards(due_at);
CREATE INDEX IF NOT EXISTS cards_phase_idx ON cards(phase);

-- Decks group cards authored together, one deck per source file.
CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL
);

-- Sources track where cards come from: a local directory or a git URL.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);

-- Append-only review history, kept for analytics.
CREATE TABLE IF NOT EXISTS review_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    quality INTEGER NOT NULL,
    reviewed_at DATETIME NOT NULL,
    ease_factor REAL NOT NULL,
    interval INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    phase TEXT NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id)
);

CREATE INDEX IF NOT EXISTS review_logs_card_id_idx ON review_logs(card_id);
`
