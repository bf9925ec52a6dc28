package main

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

// ignoreFileNames are read in every directory the walker enters.
var ignoreFileNames = []string{".gitignore", ".ignore"}

// ignoreRule is one pattern line of an ignore file. The pattern is compiled
// without its '!' so that a re-include can be told apart from no match.
type ignoreRule struct {
	pattern *ignore.GitIgnore
	negate  bool
	line    string
}

// ruleSet holds the rules of one ignore file, relative to dir.
type ruleSet struct {
	dir   string
	rules []ignoreRule
}

func parseRules(dir string, lines []string) ruleSet {
	set := ruleSet{dir: dir}
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.Trim(line, " ")
		if line == "" {
			continue
		}
		text := line
		negate := line[0] == '!'
		if negate {
			line = line[1:]
		}
		// A slash before the end anchors the pattern to dir.
		if i := strings.Index(strings.TrimSuffix(line, "/"), "/"); i > 0 {
			line = "/" + line
		}
		set.rules = append(set.rules, ignoreRule{
			pattern: ignore.CompileIgnoreLines(line),
			negate:  negate,
			line:    text,
		})
	}
	return set
}

// verdict reports whether the last rule matching path ignores it. ok is
// false when no rule matches.
func (s ruleSet) verdict(path string, isDir bool) (ignored bool, rule string, ok bool) {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, "", false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	for i := len(s.rules) - 1; i >= 0; i-- {
		if s.rules[i].pattern.MatchesPath(rel) {
			return !s.rules[i].negate, s.rules[i].line, true
		}
	}
	return false, "", false
}

// ignoreChain is the stack of ignore files in effect for the directory the
// walk is currently in, lowest precedence first. Files of directories the
// walk has left are popped.
type ignoreChain struct {
	base    int // Sets below this index are never popped
	scoped  []ruleSet
	extra   gitignore.IgnoreMatcher // --exclude patterns
	logger  *zap.Logger
	enabled bool
}

func newIgnoreChain(baseDir string, opts WalkOptions, logger *zap.Logger) *ignoreChain {
	c := &ignoreChain{logger: logger, enabled: !opts.NoIgnore}

	if c.enabled {
		top, inRepo := findRepoTop(baseDir)
		if inRepo {
			// info/exclude ranks below every .gitignore, then ancestors from
			// the work tree top down to baseDir.
			c.load(filepath.Join(top, ".git", "info", "exclude"), top)
			var dirs []string
			for dir := baseDir; ; dir = filepath.Dir(dir) {
				dirs = append([]string{dir}, dirs...)
				if dir == top {
					break
				}
			}
			for _, dir := range dirs {
				c.loadDir(dir)
			}
		} else {
			c.loadDir(baseDir)
		}
	}

	if len(opts.Excludes) > 0 {
		c.extra = gitignore.NewGitIgnoreFromReader(baseDir, strings.NewReader(strings.Join(opts.Excludes, "\n")))
	}

	c.base = len(c.scoped)
	return c
}

// loadDir pushes the ignore files found directly in dir.
func (c *ignoreChain) loadDir(dir string) {
	if !c.enabled {
		return
	}
	for _, name := range ignoreFileNames {
		c.load(filepath.Join(dir, name), dir)
	}
}

func (c *ignoreChain) load(path, dir string) {
	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("could not read ignore file", zap.String("path", path), zap.Error(err))
		}
		return
	}
	set := parseRules(dir, strings.Split(string(content), "\n"))
	if len(set.rules) == 0 {
		return
	}
	c.logger.Debug("loaded ignore file", zap.String("path", path), zap.Int("rules", len(set.rules)))
	c.scoped = append(c.scoped, set)
}

// enter drops the sets of directories that are not ancestors of path.
func (c *ignoreChain) enter(path string) {
	parent := filepath.Dir(path)
	for len(c.scoped) > c.base {
		top := c.scoped[len(c.scoped)-1].dir
		if top == parent || strings.HasPrefix(parent, top+string(filepath.Separator)) {
			return
		}
		c.scoped = c.scoped[:len(c.scoped)-1]
	}
}

// ignored asks the deepest ignore file first; the first one with a matching
// rule decides. --exclude patterns always win.
func (c *ignoreChain) ignored(path string, isDir bool) bool {
	if c.extra != nil && c.extra.Match(path, isDir) {
		c.logger.Debug("skipping excluded entry", zap.String("path", path))
		return true
	}
	for i := len(c.scoped) - 1; i >= 0; i-- {
		if ignored, rule, ok := c.scoped[i].verdict(path, isDir); ok {
			if ignored {
				c.logger.Debug("skipping ignored entry", zap.String("path", path), zap.String("rule", rule))
			}
			return ignored
		}
	}
	return false
}

// findRepoTop walks up from dir looking for a git work tree.
func findRepoTop(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// walkRoots chains walkRoot over every root, in the order given.
func walkRoots(roots []string, opts WalkOptions, logger *zap.Logger) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, root := range roots {
			for e := range walkRoot(root, opts, logger) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// walkRoot returns the entries under root in depth-first, lexical order,
// starting with root itself. Symlinks are neither followed nor emitted.
// Entries that are ignored, hidden, beyond MaxDepth, larger than MaxSize, or
// whose metadata can't be read are skipped.
// Each range over the sequence walks the filesystem again.
func walkRoot(root string, opts WalkOptions, logger *zap.Logger) iter.Seq[Entry] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(yield func(Entry) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			logger.Warn("could not resolve path", zap.String("path", root), zap.Error(err))
			return
		}
		info, err := os.Stat(absRoot)
		if err != nil {
			logger.Warn("could not access path", zap.String("path", root), zap.Error(err))
			return
		}

		baseDir := absRoot
		if !info.IsDir() {
			baseDir = filepath.Dir(absRoot)
		}
		chain := newIgnoreChain(baseDir, opts, logger)

		walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
				return nil
			}

			if path == absRoot {
				e := Entry{Root: root, Path: path, Rel: ".", IsDir: d.IsDir()}
				if !e.IsDir {
					e.Size = info.Size()
				}
				if !yield(e) {
					return filepath.SkipAll
				}
				return nil
			}

			isDir := d.IsDir()
			if !isDir && !d.Type().IsRegular() {
				logger.Debug("skipping non-regular file", zap.String("path", path))
				return nil
			}

			name := d.Name()
			if isDir && name == ".git" {
				return filepath.SkipDir
			}
			if !opts.Hidden && isHidden(name) {
				return skip(isDir)
			}

			chain.enter(path)
			if chain.ignored(path, isDir) {
				return skip(isDir)
			}

			rel, err := filepath.Rel(absRoot, path)
			if err != nil {
				rel = path
			}
			depth := pathDepth(rel)
			if opts.MaxDepth > 0 && depth > opts.MaxDepth {
				return skip(isDir)
			}

			e := Entry{Root: root, Path: path, Rel: rel, Depth: depth, IsDir: isDir}
			if !isDir {
				fi, err := d.Info()
				if err != nil {
					logger.Debug("skipping entry without metadata", zap.String("path", path), zap.Error(err))
					return nil
				}
				if opts.MaxSize > 0 && fi.Size() > opts.MaxSize {
					logger.Debug("skipping large file", zap.String("path", path), zap.Int64("size", fi.Size()))
					return nil
				}
				e.Size = fi.Size()
			}

			if !yield(e) {
				return filepath.SkipAll
			}

			if isDir {
				if opts.MaxDepth > 0 && depth == opts.MaxDepth {
					return filepath.SkipDir
				}
				chain.loadDir(path)
			}
			return nil
		})
		if walkErr != nil {
			logger.Warn("walk ended early", zap.String("root", root), zap.Error(walkErr))
		}
	}
}

func skip(isDir bool) error {
	if isDir {
		return filepath.SkipDir
	}
	return nil
}

// isHidden checks if a base name is hidden (starts with '.').
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}

// pathDepth counts the components of a relative path; "." and "" are 0.
func pathDepth(rel string) int {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(strings.Trim(rel, "/"), "/") + 1
}
