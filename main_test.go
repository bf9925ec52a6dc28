package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadOptionsDefaults(t *testing.T) {
	opts := loadOptions(viper.New(), nil)

	assert.Equal(t, []string{"."}, opts.Paths)
	assert.Equal(t, WalkOptions{}, opts.Walk)
	assert.Nil(t, opts.Extensions)
	assert.Zero(t, opts.Threads)
}

func TestLoadOptions(t *testing.T) {
	v := viper.New()
	v.Set("hidden", true)
	v.Set("no_ignore", true)
	v.Set("exclude", "vendor, *.log,,")
	v.Set("max_depth", 3)
	v.Set("max_size", "2048")
	v.Set("extensions", " RS,.py,rs")
	v.Set("threads", 8)
	v.Set("format", "JSON")
	v.Set("output", "out.md")
	v.Set("clipboard", true)

	opts := loadOptions(v, []string{"src", "docs"})

	assert.Equal(t, []string{"src", "docs"}, opts.Paths)
	assert.Equal(t, WalkOptions{
		Hidden:   true,
		NoIgnore: true,
		Excludes: []string{"vendor", "*.log"},
		MaxDepth: 3,
		MaxSize:  2048,
	}, opts.Walk)
	assert.Equal(t, []string{"rs", "py"}, opts.Extensions)
	assert.Equal(t, 8, opts.Threads)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "out.md", opts.Output)
	assert.True(t, opts.Clipboard)
}

func TestLoadOptionsListsFromConfig(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
exclude = ["target", "*.tmp"]
extensions = ["go", "MD"]
`)))

	opts := loadOptions(v, nil)
	assert.Equal(t, []string{"target", "*.tmp"}, opts.Walk.Excludes)
	assert.Equal(t, []string{"go", "md"}, opts.Extensions)
}

func TestCountPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.go":   "package main\n\nfunc main() {}\n",
		"README.md": "# Title\n\ntext\n",
		"logo.png":  "12345678",
		"LICENSE":   "MIT",
	})

	opts := Options{Paths: []string{root}, Threads: 2}

	lines, err := countPaths(opts, linesMetric, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Table{"go": 2, "md": 2}, lines)

	sizes, err := countPaths(opts, sizeMetric, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Table{"go": 29, "md": 14, "png": 8, NoExtension: 3}, sizes)

	opts.Extensions = []string{"go"}
	lines, err = countPaths(opts, linesMetric, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Table{"go": 2}, lines)
}

func TestLcCommand(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.rs":     "fn main() {}\n\n",
		"sub/b.rs": "fn b() {}\nfn c() {}\n",
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"lc", "--format", "json", filepath.Clean(root)})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var got map[string]int64
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]int64{"rs": 3}, got)
}
