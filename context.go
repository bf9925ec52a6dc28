package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

const defaultContextFile = "context.md"

// generateContext writes the merged document for roots to output: the file
// structure of every root first, then the fenced content of every text file
// in walk order. Only failures to create or write output are returned.
func generateContext(roots []string, output string, opts WalkOptions, logger *zap.Logger) (err error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	absOutput, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("error resolving output path %s: %w", output, err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", output, err)
	}
	defer closeWith(f, &err)

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprint(w, "# File Structure\n\n"); err != nil {
		return fmt.Errorf("error writing %s: %w", output, err)
	}

	// One walk per root feeds both the tree and the list of files to merge.
	renderer := newTreeRenderer()
	var textFiles []Entry
	for e := range walkRoots(roots, opts, logger) {
		if line, ok := renderer.line(e); ok {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("error writing %s: %w", output, err)
			}
		}
		if e.IsDir || e.Path == absOutput {
			continue
		}
		if isTextExtension(extensionKey(filepath.Base(e.Path))) {
			textFiles = append(textFiles, e)
		}
	}

	if _, err := fmt.Fprint(w, "\n\n# File Contents\n\n"); err != nil {
		return fmt.Errorf("error writing %s: %w", output, err)
	}

	for _, e := range textFiles {
		if err := writeFileBlock(w, e.DisplayPath(), e.Path, logger); err != nil {
			return fmt.Errorf("error writing %s: %w", output, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error flushing %s: %w", output, err)
	}

	logger.Debug("context file written", zap.String("output", output), zap.Int("files", len(textFiles)))
	return nil
}

// copyFileToClipboard puts the contents of path on the system clipboard.
func copyFileToClipboard(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := clipboard.WriteAll(string(content)); err != nil {
		return fmt.Errorf("error writing to clipboard: %w", err)
	}
	return nil
}
