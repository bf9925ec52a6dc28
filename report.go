package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// writeTable prints t in the requested format. unit names the measure in
// text output ("lines", "bytes", "tokens").
func writeTable(w io.Writer, t Table, format, unit string, colored bool) error {
	switch format {
	case "", "text":
		key := fmt.Sprint
		if colored {
			key = color.New(color.FgCyan, color.Bold).Sprint
		}
		for _, ext := range t.Keys() {
			if _, err := fmt.Fprintf(w, "%s files: %d %s\n", key(ext), t[ext], unit); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]int64(t)); err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]int64(t)); err != nil {
			return fmt.Errorf("error encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s. Use 'text', 'yaml' or 'json'", format)
	}
}

// stdoutIsTerminal reports whether colored output makes sense on stdout.
func stdoutIsTerminal() bool {
	if color.NoColor {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
