// Package sync reconciles configured card sources with the store: new
// cards are inserted in the new phase, cards whose text disappeared from
// the source are deleted.
package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/studygenius/srs/internal/content"
	"github.com/studygenius/srs/internal/domain"
	"github.com/studygenius/srs/internal/gitsource"
	"github.com/studygenius/srs/internal/parser"
	"github.com/studygenius/srs/internal/storage"
)

// SourceType values stored in the sources table.
const (
	TypeLocal = "local"
	TypeGit   = "git"
)

// DetectType classifies a source path as a git URL or a local directory.
func DetectType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return TypeGit
	}
	return TypeLocal
}

// Run reconciles every configured source. Per-source failures are logged
// and skipped; one broken source never blocks the rest.
func Run(db *storage.DB, reposDir string, now time.Time) {
	slog.Info("starting sync for all sources")
	sources, err := db.AllSources()
	if err != nil {
		slog.Error("failed to load sources", "error", err)
		return
	}
	if len(sources) == 0 {
		slog.Info("no sources configured; add one with --add-source <path/or/url.git>")
		return
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		slog.Error("failed to create repos directory", "path", reposDir, "error", err)
		return
	}

	for _, source := range sources {
		slog.Info("syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		scanPath := source.Path
		if source.Type == TypeGit {
			localPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("cannot map git URL to a local path", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localPath); err != nil {
				slog.Error("git sync failed", "url", source.Path, "error", err)
				continue
			}
			scanPath = localPath
		}

		reconcile(db, source.ID, scanPath, now)
	}
	slog.Info("sync complete")
}

// reconcile walks one source directory and brings the store in line with
// the markdown decks found there.
func reconcile(db *storage.DB, sourceID int64, dir string, now time.Time) {
	var (
		inserted int
		errs     int
	)
	found := make(map[string]bool)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		entries, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			slog.Warn("failed to parse deck file", "path", path, "error", parseErr)
			errs++
			return nil
		}
		if len(entries) == 0 {
			return nil
		}

		deckID, err := db.GetOrCreateDeck(deckName(path), now)
		if err != nil {
			slog.Warn("failed to resolve deck", "path", path, "error", err)
			errs++
			return nil
		}

		for _, entry := range entries {
			id := content.Hash(entry)
			found[id] = true

			_, getErr := db.GetCard(id)
			if getErr == nil {
				continue // already known, review state untouched
			}
			if !errors.Is(getErr, storage.ErrNotFound) {
				slog.Warn("card lookup failed", "card", id, "error", getErr)
				errs++
				continue
			}

			card := domain.NewCard(id, deckID, entry.Front, entry.Back, entry.Hint, now)
			if err := db.InsertCard(card, sourceID); err != nil {
				slog.Warn("card insert failed", "card", id, "error", err)
				errs++
				continue
			}
			inserted++
		}
		return nil
	})
	if walkErr != nil {
		slog.Error("failed to walk source directory", "path", dir, "error", walkErr)
		return
	}

	// Cards imported from this source whose text no longer exists anywhere
	// in it are orphans; their review state dies with the content.
	stored, err := db.CardsBySource(sourceID)
	if err != nil {
		slog.Error("failed to load cards for source", "source", sourceID, "error", err)
		return
	}
	var orphaned int
	for _, card := range stored {
		if found[card.ID] {
			continue
		}
		if err := db.DeleteCard(card.ID); err != nil {
			slog.Warn("failed to delete orphaned card", "card", card.ID, "error", err)
			errs++
			continue
		}
		orphaned++
	}

	if err := db.TouchSource(sourceID, now); err != nil {
		slog.Warn("failed to update source scan time", "source", sourceID, "error", err)
	}

	slog.Info("source reconciled",
		"path", dir,
		"inserted", inserted,
		"orphaned_deleted", orphaned,
		"errors", errs,
	)
}

// deckName derives a deck name from a deck file path: the base name
// without the .md extension.
func deckName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// gitURLToLocalPath maps a git URL onto a stable directory under baseDir,
// e.g. https://host/user/decks.git -> baseDir/host/user/decks. SSH-style
// addresses (git@host:user/decks.git) are handled separately since they do
// not parse as URLs.
func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err == nil && (parsed.Scheme == "https" || parsed.Scheme == "http") {
		p := strings.TrimSuffix(parsed.Path, ".git")
		return filepath.Join(baseDir, parsed.Host, p), nil
	}

	if at := strings.Index(repoURL, "@"); at >= 0 {
		rest := repoURL[at+1:]
		host, repoPath, ok := strings.Cut(rest, ":")
		if ok {
			repoPath = strings.TrimSuffix(repoPath, ".git")
			return filepath.Join(baseDir, host, repoPath), nil
		}
	}
	return "", fmt.Errorf("cannot parse git URL: %s", repoURL)
}
