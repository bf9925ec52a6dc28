package main

import "path/filepath"

// Entry is a filesystem node discovered by the walker.
type Entry struct {
	Root  string // Root as supplied by the caller
	Path  string // Absolute path
	Rel   string // Path relative to Root, "." for the root itself
	Depth int    // Number of path components in Rel, 0 for the root itself
	IsDir bool
	Size  int64 // Zero for directories
}

// DisplayPath joins the caller's root with the entry's relative path, so
// headers read the way the user typed the root.
func (e Entry) DisplayPath() string {
	if e.Rel == "." {
		return e.Root
	}
	return filepath.Join(e.Root, e.Rel)
}

// WalkOptions controls which entries the walker emits.
type WalkOptions struct {
	Hidden   bool     // Emit entries whose name starts with '.'
	NoIgnore bool     // Don't honor .gitignore, .ignore or info/exclude
	Excludes []string // Extra gitignore-syntax patterns, anchored at each root
	MaxDepth int      // 0 for no limit
	MaxSize  int64    // Skip files larger than this many bytes, 0 for no limit
}

// Options is the fully resolved configuration of one run.
type Options struct {
	Paths      []string
	Walk       WalkOptions
	Extensions []string // Optional allow-list of Extension Keys, already normalized
	Threads    int
	Format     string // text, yaml or json
	Output     string // Merge-mode artifact path
	Clipboard  bool
	Model      string // Tokenizer model for the token metric
}
