package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// isGitURL checks if the input string looks like a Git repository URL.
// Prioritizes .git suffix or git@ prefix.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") ||
		strings.HasPrefix(input, "git@")
}

// cloneGitRepo shallow-clones url into a temporary directory and returns its
// path. progress may be nil.
func cloneGitRepo(url string, progress io.Writer, logger *zap.Logger) (string, error) {
	tempDir, err := os.MkdirTemp("", "repotricks-git-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	logger.Info("cloning repository", zap.String("url", url), zap.String("dir", tempDir))
	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           url,
		Progress:      progress,
		Depth:         1,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return tempDir, nil
}

// resolveRoots replaces every git URL in paths with a fresh clone. The
// returned cleanup removes the clones and must be called once the run is over,
// even when an error is returned.
func resolveRoots(paths []string, progress io.Writer, logger *zap.Logger) ([]string, func(), error) {
	var tempDirs []string
	cleanup := func() {
		for _, dir := range tempDirs {
			logger.Debug("removing temporary clone", zap.String("dir", dir))
			_ = os.RemoveAll(dir)
		}
	}

	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		if !isGitURL(p) {
			roots = append(roots, p)
			continue
		}
		dir, err := cloneGitRepo(p, progress, logger)
		if err != nil {
			return nil, cleanup, err
		}
		tempDirs = append(tempDirs, dir)
		roots = append(roots, dir)
	}
	return roots, cleanup, nil
}
