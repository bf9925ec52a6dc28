package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// fence delimits each file's content in the merged document.
const fence = "```"

// TreeLine is one rendered entry of the file structure section.
type TreeLine struct {
	Depth int    // 1 for a root's direct children
	Name  string // Final path component only
}

func (l TreeLine) String() string {
	return strings.Repeat("  ", l.Depth-1) + "- " + l.Name
}

// treeRenderer turns walked entries into TreeLines relative to their root.
type treeRenderer struct {
	absRoots map[string]string
}

func newTreeRenderer() *treeRenderer {
	return &treeRenderer{absRoots: make(map[string]string)}
}

// line renders e relative to its root. The root itself (depth 0) has no line.
func (r *treeRenderer) line(e Entry) (TreeLine, bool) {
	absRoot, ok := r.absRoots[e.Root]
	if !ok {
		var err error
		if absRoot, err = filepath.Abs(e.Root); err != nil {
			absRoot = e.Root
		}
		r.absRoots[e.Root] = absRoot
	}

	rel := relativeTo(absRoot, e.Path)
	depth := componentCount(rel)
	if depth < 1 {
		return TreeLine{}, false
	}
	return TreeLine{Depth: depth, Name: filepath.Base(rel)}, true
}

// relativeTo returns path relative to root, or path itself when it does not
// lie under root.
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// componentCount counts the named components of a path, so that "a/b" and
// "/a/b" are both 2 and "." is 0.
func componentCount(path string) int {
	n := 0
	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if part != "" && part != "." {
			n++
		}
	}
	return n
}

// sinkWriter remembers the first error of the underlying writer, so a failed
// copy can be told apart from a failed read.
type sinkWriter struct {
	w   io.Writer
	err error
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}

// lastByteReader records the last byte that passed through it.
type lastByteReader struct {
	r    io.Reader
	last byte
	any  bool
}

func (l *lastByteReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if n > 0 {
		l.last = p[n-1]
		l.any = true
	}
	return n, err
}

// writeFileBlock streams one file into w as a header line followed by its
// content inside a fenced block and a blank separator line. A file that
// can't be opened is left out; a read failure midway closes the block early.
// Only errors of w are returned.
func writeFileBlock(w io.Writer, header, path string, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()

	sink := &sinkWriter{w: w}
	if _, err := fmt.Fprintf(sink, "%s\n%s\n", header, fence); err != nil {
		return err
	}

	src := &lastByteReader{r: f}
	if _, err := io.Copy(sink, src); err != nil {
		if sink.err != nil {
			return sink.err
		}
		logger.Warn("file truncated in output", zap.String("path", path), zap.Error(err))
	}

	if src.any && src.last != '\n' {
		if _, err := io.WriteString(sink, "\n"); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(sink, "%s\n\n", fence)
	return err
}

// closeWith closes c and joins its error into *errp.
func closeWith(c io.Closer, errp *error) {
	if err := c.Close(); err != nil {
		*errp = errors.Join(*errp, err)
	}
}
