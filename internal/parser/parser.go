package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Options controls how a file becomes a dataset.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t'.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Parser turns a file into a dataset.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string, opt Options) (table.Dataset, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// ParseFile selects a parser based on filename and returns the dataset.
func ParseFile(path string, opt Options) (table.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return table.Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	for _, p := range registry {
		if p.CanParse(path) {
			return p.Parse(path, opt)
		}
	}
	return table.Dataset{}, fmt.Errorf("%w: %s (expected .csv, .tsv, .txt or .xlsx)", ErrUnsupported, path)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

// normalizeHeaders trims names, strips a BOM, names blank headers by
// position and suffixes repeats so the header list has no duplicates.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = "Column " + strconv.Itoa(i+1)
		}
		name := h
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// blankRow reports whether every cell of a raw record is empty after trimming.
func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
