// Package texparser reads TeX hyphenation sources such as hyph-en-us.tex.
//
// The format is line oriented. A line starting with \patterns opens the
// pattern block, \hyphenation opens the exception block and a line starting
// with } closes either. Lines starting with # or % are comments. Every other
// line inside a block holds one or more whitespace separated entries.
package texparser

import (
	"bufio"
	"io"
	"strings"

	"github.com/conneroisu/hyphen/internal/errors"
)

// Sink receives parsed entries. *corpus.Builder and the SQLite store
// implement it.
type Sink interface {
	AddPattern(pattern string) error
	AddException(word string) error
}

// Mode is the parser state.
type Mode int

const (
	ModeNeutral Mode = iota
	ModePatterns
	ModeExceptions
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNeutral:
		return "neutral"
	case ModePatterns:
		return "patterns"
	case ModeExceptions:
		return "exceptions"
	default:
		return "unknown"
	}
}

// Stats summarizes a parse.
type Stats struct {
	Lines      int `json:"lines" yaml:"lines"`
	Patterns   int `json:"patterns" yaml:"patterns"`
	Exceptions int `json:"exceptions" yaml:"exceptions"`
	Rejected   int `json:"rejected" yaml:"rejected"`
}

// maxLineSize bounds a single source line.
const maxLineSize = 1 << 20

// Parse feeds every entry of a TeX source to sink. Rejected entries do not
// stop the parse; they are returned together as one error. source names the
// input in error messages.
func Parse(r io.Reader, source string, sink Sink) (Stats, error) {
	var (
		stats     Stats
		mode      = ModeNeutral
		collector = errors.NewCollector()
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, `\patterns`):
			mode = ModePatterns
			continue
		case strings.HasPrefix(line, `\hyphenation`):
			mode = ModeExceptions
			continue
		case strings.HasPrefix(line, "}"):
			mode = ModeNeutral
			continue
		case mode == ModeNeutral, line == "", isComment(line):
			continue
		}

		for _, entry := range strings.Fields(line) {
			var err error
			if mode == ModePatterns {
				if err = sink.AddPattern(entry); err == nil {
					stats.Patterns++
				}
			} else {
				if err = sink.AddException(entry); err == nil {
					stats.Exceptions++
				}
			}
			if err != nil {
				stats.Rejected++
				collector.Add(errors.WrapParse(err, source, stats.Lines).WithContext("entry", entry))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.WrapIO(err, errors.CodeDictRead, "reading "+source)
	}
	return stats, collector.Err()
}

// ParsePatterns feeds a plain whitespace separated pattern list to sink.
func ParsePatterns(r io.Reader, source string, sink Sink) (Stats, error) {
	var (
		stats     Stats
		collector = errors.NewCollector()
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if isComment(line) {
			continue
		}
		for _, entry := range strings.Fields(line) {
			if err := sink.AddPattern(entry); err != nil {
				stats.Rejected++
				collector.Add(errors.WrapParse(err, source, stats.Lines).WithContext("entry", entry))
				continue
			}
			stats.Patterns++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.WrapIO(err, errors.CodeDictRead, "reading "+source)
	}
	return stats, collector.Err()
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%")
}
