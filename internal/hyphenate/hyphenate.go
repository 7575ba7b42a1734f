// Package hyphenate applies a corpus to running text. Text is split into
// words along Unicode word boundaries (UAX #29), every word is looked up in
// the corpus and the break points are mapped back into the text.
package hyphenate

import (
	"strings"

	"github.com/conneroisu/hyphen/internal/corpus"
	"github.com/rivo/uniseg"
)

// SoftHyphen is the default break mark, U+00AD.
const SoftHyphen = "\u00ad"

// Dictionary is the lookup surface of a corpus.
type Dictionary interface {
	HyphenationIndices(word string) []int
}

var _ Dictionary = (*corpus.Corpus)(nil)

// PossibilitiesForWord returns the rune offsets in word where a break may be
// inserted.
func PossibilitiesForWord(word string, dict Dictionary) []int {
	return dict.HyphenationIndices(word)
}

// Possibilities returns the strictly ascending byte offsets in text where a
// break may be inserted. Word-level rune offsets that fall outside their word,
// or that repeat an earlier offset, are dropped.
func Possibilities(text string, dict Dictionary) []int {
	offsets := []int{}
	start := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		offsets = appendWordOffsets(offsets, word, start, dict)
		start += len(word)
	}
	return offsets
}

func appendWordOffsets(offsets []int, word string, start int, dict Dictionary) []int {
	breaks := dict.HyphenationIndices(word)
	if len(breaks) == 0 {
		return offsets
	}

	// Map rune offsets to byte offsets in a single pass.
	runeToByte := make([]int, 0, len(word)+1)
	for i := range word {
		runeToByte = append(runeToByte, i)
	}
	runeToByte = append(runeToByte, len(word))

	last := -1
	if len(offsets) > 0 {
		last = offsets[len(offsets)-1]
	}
	for _, b := range breaks {
		// an exception may list a break past the end of the word
		if b < 0 || b >= len(runeToByte) {
			continue
		}
		abs := start + runeToByte[b]
		// a repeated offset would produce an empty segment
		if abs <= last {
			continue
		}
		offsets = append(offsets, abs)
		last = abs
	}
	return offsets
}

// Segments yields the pieces of a text cut at a sorted list of byte offsets.
// It is consumed once.
type Segments struct {
	text    string
	breaks  []int
	prior   int
	current int
}

// NewSegments cuts text at breaks, which must be ascending and within text.
func NewSegments(text string, breaks []int) *Segments {
	return &Segments{text: text, breaks: breaks}
}

// Mark segments text at every break allowed by dict.
func Mark(text string, dict Dictionary) *Segments {
	return NewSegments(text, Possibilities(text, dict))
}

// MarkWord segments a single word, without word-boundary analysis.
func MarkWord(word string, dict Dictionary) *Segments {
	return NewSegments(word, wordByteOffsets(word, dict))
}

// Next returns the next segment. After len(breaks)+1 segments it returns
// false.
func (s *Segments) Next() (string, bool) {
	start := s.prior
	switch {
	case s.current < len(s.breaks):
		pos := s.breaks[s.current]
		s.prior = pos
		s.current++
		return s.text[start:pos], true
	case s.current == len(s.breaks):
		s.current++
		return s.text[start:], true
	default:
		return "", false
	}
}

// Join drains the remaining segments and joins them with mark.
func (s *Segments) Join(mark string) string {
	var b strings.Builder
	b.Grow(len(s.text) + len(mark)*len(s.breaks))
	first := true
	for {
		seg, ok := s.Next()
		if !ok {
			break
		}
		if !first {
			b.WriteString(mark)
		}
		b.WriteString(seg)
		first = false
	}
	return b.String()
}

// Collect drains the remaining segments into a slice.
func (s *Segments) Collect() []string {
	parts := make([]string, 0, len(s.breaks)+1)
	for {
		seg, ok := s.Next()
		if !ok {
			return parts
		}
		parts = append(parts, seg)
	}
}

// Hyphenate inserts a soft hyphen at every allowed break in text.
func Hyphenate(text string, dict Dictionary) string {
	return HyphenateWith(text, dict, SoftHyphen)
}

// HyphenateWith inserts mark at every allowed break in text.
func HyphenateWith(text string, dict Dictionary, mark string) string {
	return Mark(text, dict).Join(mark)
}

// Parts splits a single word at its allowed breaks.
func Parts(word string, dict Dictionary) []string {
	return MarkWord(word, dict).Collect()
}

func wordByteOffsets(word string, dict Dictionary) []int {
	return appendWordOffsets([]int{}, word, 0, dict)
}
