package main

import (
	"errors"
	"fmt"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"go.uber.org/zap"
)

// runInteractiveFinder lets the user pick roots among the entries of the
// ignore-aware walk of the current directory. A nil slice with a nil error
// means the user aborted.
func runInteractiveFinder(opts WalkOptions, logger *zap.Logger) ([]string, error) {
	var candidates []Entry
	for e := range walkRoot(".", opts, logger) {
		if e.Rel == "." {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return nil, errors.New("no files or directories found to select from")
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string {
			return candidates[i].Rel
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select files or directories to process. Press Tab to multi-select, Enter to confirm."
			}
			e := candidates[i]
			if e.IsDir {
				return fmt.Sprintf("Path: %s\nType: Directory", e.Rel)
			}
			key := extensionKey(filepath.Base(e.Rel))
			return fmt.Sprintf("Path: %s\nType: File\nSize: %d bytes\nText: %t", e.Rel, e.Size, isTextExtension(key))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	selected := make([]string, len(idx))
	for i, index := range idx {
		selected[i] = candidates[index].DisplayPath()
	}
	return selected, nil
}
