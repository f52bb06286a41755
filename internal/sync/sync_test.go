package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studygenius/srs/internal/domain"
	"github.com/studygenius/srs/internal/storage"
)

var day0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestDetectType(t *testing.T) {
	cases := map[string]string{
		"/home/user/decks":                   TypeLocal,
		"decks":                              TypeLocal,
		"https://example.com/user/decks.git": TypeGit,
		"http://example.com/user/decks":      TypeGit,
		"git@example.com:user/decks.git":     TypeGit,
		"/home/user/checkouts/decks.git":     TypeGit,
	}
	for path, want := range cases {
		if got := DetectType(path); got != want {
			t.Errorf("DetectType(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGitURLToLocalPath(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/user/decks.git", filepath.Join("repos", "example.com", "user", "decks")},
		{"git@example.com:user/decks.git", filepath.Join("repos", "example.com", "user", "decks")},
	}
	for _, tc := range cases {
		got, err := gitURLToLocalPath("repos", tc.url)
		if err != nil {
			t.Errorf("gitURLToLocalPath(%q): %v", tc.url, err)
			continue
		}
		if got != tc.want {
			t.Errorf("gitURLToLocalPath(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}

	if _, err := gitURLToLocalPath("repos", "not a url"); err == nil {
		t.Error("expected an error for an unparseable URL")
	}
}

func TestRunReconcilesLocalSource(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "srs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	deckDir := t.TempDir()
	deckFile := filepath.Join(deckDir, "biology.md")
	write := func(text string) {
		t.Helper()
		if err := os.WriteFile(deckFile, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("Q: What carries oxygen?\nA: Red blood cells\n\nQ: Smallest bone?\nA: The stapes\n")

	sourceID, err := db.InsertSource(deckDir, TypeLocal)
	if err != nil {
		t.Fatalf("InsertSource: %v", err)
	}

	Run(db, t.TempDir(), day0)

	cards, err := db.CardsBySource(sourceID)
	if err != nil {
		t.Fatalf("CardsBySource: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards after first sync, want 2", len(cards))
	}
	for _, c := range cards {
		if c.Phase != domain.New {
			t.Errorf("card %s: Phase = %v, want new", c.ID, c.Phase)
		}
		if c.DeckID == 0 {
			t.Errorf("card %s: no deck assigned", c.ID)
		}
	}

	// Re-running must not duplicate anything.
	Run(db, t.TempDir(), day0)
	cards, _ = db.CardsBySource(sourceID)
	if len(cards) != 2 {
		t.Fatalf("got %d cards after re-sync, want 2", len(cards))
	}

	// Dropping a card from the file orphans it; the survivor keeps its row.
	write("Q: What carries oxygen?\nA: Red blood cells\n")
	Run(db, t.TempDir(), day0.AddDate(0, 0, 1))

	cards, _ = db.CardsBySource(sourceID)
	if len(cards) != 1 {
		t.Fatalf("got %d cards after removal sync, want 1", len(cards))
	}
	if cards[0].Front != "What carries oxygen?" {
		t.Errorf("surviving card = %q", cards[0].Front)
	}
}
