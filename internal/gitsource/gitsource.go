// Package gitsource keeps local mirrors of git-hosted deck repositories.
package gitsource

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Sync ensures localPath holds an up-to-date clone of the repository at
// url: it clones on first sight and pulls from origin afterwards.
func Sync(url, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		slog.Info("cloning deck repository", "url", url, "path", localPath)
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return fmt.Errorf("clone %s: %w", url, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("open repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree at %s: %w", localPath, err)
	}

	slog.Info("pulling deck repository", "path", localPath)
	err = worktree.Pull(&git.PullOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("pull %s: %w", localPath, err)
	}
	return nil
}
