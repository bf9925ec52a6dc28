package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const defaultTiktokenModel = "gpt-4o"

// Tokenizer counts model tokens in a piece of text.
type Tokenizer interface {
	CountTokens(text string) int
}

// TiktokenWrapper serializes access to a tiktoken encoder so one instance
// can be shared by all workers. The lock is held only while encoding.
type TiktokenWrapper struct {
	mu  sync.Mutex
	ttk *tiktoken.Tiktoken
}

func (w *TiktokenWrapper) CountTokens(text string) int {
	if w.ttk == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ttk.EncodeOrdinary(text))
}

// loadTiktoken returns the encoder for model, falling back to the default
// model when the name is unknown.
func loadTiktoken(model string, logger *zap.Logger) (*TiktokenWrapper, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("unknown tiktoken model, using default",
			zap.String("model", model), zap.String("default", defaultTiktokenModel), zap.Error(err))
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &TiktokenWrapper{ttk: tke}, nil
}

// countTokens feeds r to tk one line at a time, so memory stays bounded by
// the longest line rather than the whole file. Splitting at newlines only
// affects tokens that would span a line break.
func countTokens(r io.Reader, tk Tokenizer) (int, error) {
	br := bufio.NewReaderSize(r, lineReaderSize)
	total := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			total += tk.CountTokens(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
	}
}

// tokenMeasure adapts a Tokenizer to the aggregator's measure signature.
func tokenMeasure(tk Tokenizer) measureFunc {
	return func(path string) (int64, error) {
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("error opening %s: %w", path, err)
		}
		defer f.Close()

		n, err := countTokens(f, tk)
		if err != nil {
			return 0, fmt.Errorf("error reading %s: %w", path, err)
		}
		return int64(n), nil
	}
}
