package main

import (
	"iter"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Table maps an Extension Key to a running total. A key is present once at
// least one file with that key was measured, even if its total is zero.
type Table map[string]int64

// Add folds n into the total for key.
func (t Table) Add(key string, n int64) {
	t[key] += n
}

// Merge folds every total of other into t. Merging is commutative and
// associative, so partial tables may be combined in any order.
func (t Table) Merge(other Table) {
	for k, v := range other {
		t.Add(k, v)
	}
}

// Keys returns the keys in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// candidate is a file handed to a measure, together with its grouping key.
type candidate struct {
	Path string
	Key  string
}

// measureFunc computes one file's contribution to its key's total.
type measureFunc func(path string) (int64, error)

// fileFilter decides which walked files are measured.
type fileFilter struct {
	allow    extensionSet // nil means every key is allowed
	textOnly bool         // Require the key to pass isTextExtension
}

func newFileFilter(allow []string, textOnly bool) fileFilter {
	f := fileFilter{textOnly: textOnly}
	if len(allow) > 0 {
		f.allow = newExtensionSet(allow...)
	}
	return f
}

func (f fileFilter) accepts(key string) bool {
	if f.allow != nil && !f.allow.contains(key) {
		return false
	}
	if f.textOnly && !isTextExtension(key) {
		return false
	}
	return true
}

// selectCandidates drains entries and keeps the files the filter accepts, in
// walk order.
func selectCandidates(entries iter.Seq[Entry], filter fileFilter) []candidate {
	var files []candidate
	for e := range entries {
		if e.IsDir {
			continue
		}
		key := extensionKey(filepath.Base(e.Path))
		if !filter.accepts(key) {
			continue
		}
		files = append(files, candidate{Path: e.Path, Key: key})
	}
	return files
}

// aggregate measures every candidate on a pool of workers. Each worker folds
// into its own Table; the partial tables are merged once all workers are done.
// Files whose measure fails are left out of the totals.
func aggregate(files []candidate, workers int, measure measureFunc, logger *zap.Logger) Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = max(len(files), 1)
	}
	logger.Debug("measuring files", zap.Int("files", len(files)), zap.Int("workers", workers))

	jobs := make(chan candidate, len(files))
	partials := make(chan Table, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go measureWorker(measure, jobs, partials, &wg, logger.With(zap.Int("workerID", w)))
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	wg.Wait()
	close(partials)

	total := make(Table)
	for partial := range partials {
		total.Merge(partial)
	}
	return total
}

func measureWorker(measure measureFunc, jobs <-chan candidate, partials chan<- Table, wg *sync.WaitGroup, logger *zap.Logger) {
	defer wg.Done()
	partial := make(Table)
	for file := range jobs {
		n, err := measure(file.Path)
		if err != nil {
			logger.Debug("skipping unreadable file", zap.String("path", file.Path), zap.Error(err))
			continue
		}
		partial.Add(file.Key, n)
	}
	partials <- partial
}
