package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTreeRendererLine(t *testing.T) {
	root := t.TempDir()
	r := newTreeRenderer()

	tests := []struct {
		name   string
		entry  Entry
		want   TreeLine
		wantOK bool
	}{
		{
			name:  "root itself",
			entry: Entry{Root: root, Path: root, Rel: "."},
		},
		{
			name:   "direct child",
			entry:  Entry{Root: root, Path: filepath.Join(root, "x")},
			want:   TreeLine{Depth: 1, Name: "x"},
			wantOK: true,
		},
		{
			name:   "nested file",
			entry:  Entry{Root: root, Path: filepath.Join(root, "x", "y", "a.txt")},
			want:   TreeLine{Depth: 3, Name: "a.txt"},
			wantOK: true,
		},
		{
			name:   "outside the root",
			entry:  Entry{Root: root, Path: filepath.Join(filepath.Dir(root), "elsewhere", "b.txt")},
			want:   TreeLine{Depth: componentCount(filepath.Join(filepath.Dir(root), "elsewhere", "b.txt")), Name: "b.txt"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.line(tt.entry)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTreeRendererRelativeRoot(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	line, ok := newTreeRenderer().line(Entry{Root: ".", Path: filepath.Join(wd, "pkg", "a.go")})
	require.True(t, ok)
	assert.Equal(t, TreeLine{Depth: 2, Name: "a.go"}, line)
}

func TestTreeLineString(t *testing.T) {
	assert.Equal(t, "- x", TreeLine{Depth: 1, Name: "x"}.String())
	assert.Equal(t, "    - a.txt", TreeLine{Depth: 3, Name: "a.txt"}.String())
}

func TestComponentCount(t *testing.T) {
	assert.Equal(t, 0, componentCount("."))
	assert.Equal(t, 1, componentCount("a"))
	assert.Equal(t, 2, componentCount("a/b"))
	assert.Equal(t, 2, componentCount("/a/b"))
	assert.Equal(t, 2, componentCount("a/b/"))
}

func TestWriteFileBlock(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":     "hello\n",
		"b.txt":     "no newline",
		"empty.txt": "",
		"multi.md":  "# title\n\nbody\n",
	})

	tests := []struct {
		file string
		want string
	}{
		{"a.txt", "H\n```\nhello\n```\n\n"},
		{"b.txt", "H\n```\nno newline\n```\n\n"},
		{"empty.txt", "H\n```\n```\n\n"},
		{"multi.md", "H\n```\n# title\n\nbody\n```\n\n"},
		{"missing.txt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeFileBlock(&buf, "H", filepath.Join(dir, tt.file), zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteFileBlockSinkError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello\n"})

	err := writeFileBlock(failingWriter{}, "H", filepath.Join(dir, "a.txt"), zap.NewNop())
	assert.EqualError(t, err, "disk full")
}

func TestSinkWriterKeepsFirstError(t *testing.T) {
	s := &sinkWriter{w: failingWriter{}}
	_, err := s.Write([]byte("x"))
	require.Error(t, err)
	_, err2 := s.Write([]byte("y"))
	assert.Equal(t, err, err2)
	assert.Equal(t, err, s.err)
}
