package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
	"unicode/utf8"
)

// lineReaderSize bounds the memory used per file; longer lines arrive in
// several fragments.
const lineReaderSize = 32 * 1024

// countLines counts the lines of r that hold at least one non-whitespace
// character. A final line without a trailing newline is counted too; a line
// that is not valid UTF-8 is not.
func countLines(r io.Reader) (int, error) {
	br := bufio.NewReaderSize(r, lineReaderSize)
	count := 0
	var line lineScan
	line.reset()
	for {
		frag, isPrefix, err := br.ReadLine()
		if len(frag) > 0 {
			line.feed(frag, isPrefix)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, err
		}
		if !isPrefix {
			if !line.blank && !line.invalid {
				count++
			}
			line.reset()
		}
	}
}

// lineScan classifies one line as it arrives in fragments.
type lineScan struct {
	blank   bool
	invalid bool
	pending []byte // Incomplete UTF-8 sequence cut off by the fragment end
}

func (s *lineScan) reset() {
	s.blank = true
	s.invalid = false
	s.pending = s.pending[:0]
}

// feed scans frag. more tells whether the line continues in a later
// fragment, in which case a trailing partial rune is kept for it.
func (s *lineScan) feed(frag []byte, more bool) {
	data := frag
	if len(s.pending) > 0 {
		data = append(s.pending, frag...)
		s.pending = s.pending[:0]
	}
	for i := 0; i < len(data); {
		if more && !utf8.FullRune(data[i:]) {
			s.pending = append(s.pending[:0], data[i:]...)
			return
		}
		r, size := utf8.DecodeRune(data[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			s.invalid = true
		case !unicode.IsSpace(r):
			s.blank = false
		}
		i += size
	}
}

// countFileLines opens path and counts its non-blank lines.
func countFileLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := countLines(f)
	if err != nil {
		return 0, fmt.Errorf("error reading %s: %w", path, err)
	}
	return int64(n), nil
}

// fileSize is the size measure used by the sz command.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("error accessing %s: %w", path, err)
	}
	return info.Size(), nil
}
