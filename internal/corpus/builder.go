// Package corpus turns hyphenation patterns and exception words into break
// offsets for single words.
//
// A corpus is assembled with a Builder and frozen with Build. The resulting
// *Corpus is never mutated again and may be shared between goroutines.
package corpus

import (
	"strings"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/trie"
	"golang.org/x/text/language"
)

// Default thresholds.
const (
	DefaultMinWordLength = 5
	DefaultLeftMin       = 2
	DefaultRightMin      = 2
)

// exceptionMarker separates syllables in exception words.
const exceptionMarker = '-'

// Thresholds bound which words and positions may be hyphenated.
type Thresholds struct {
	MinWordLength int `json:"min_word_length" yaml:"min_word_length"`
	LeftMin       int `json:"left_min" yaml:"left_min"`
	RightMin      int `json:"right_min" yaml:"right_min"`
}

// DefaultThresholds returns 5/2/2.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWordLength: DefaultMinWordLength,
		LeftMin:       DefaultLeftMin,
		RightMin:      DefaultRightMin,
	}
}

func (t Thresholds) normalized() Thresholds {
	return Thresholds{
		MinWordLength: max(t.MinWordLength, 0),
		LeftMin:       max(t.LeftMin, 0),
		RightMin:      max(t.RightMin, 0),
	}
}

// Builder collects patterns and exceptions. It is not safe for concurrent use.
type Builder struct {
	trie       *trie.Trie
	exceptions map[string][]int
	thresholds Thresholds
	lang       language.Tag
	foldCase   bool
	sealed     bool
}

// NewBuilder returns an empty builder with default thresholds.
func NewBuilder() *Builder {
	return &Builder{
		trie:       trie.New(),
		exceptions: make(map[string][]int),
		thresholds: DefaultThresholds(),
		lang:       language.Und,
	}
}

// AddPattern inserts a digit-weighted pattern.
func (b *Builder) AddPattern(pattern string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := b.trie.Insert(pattern); err != nil {
		return err
	}
	return nil
}

// AddException registers a word with explicit hyphens, e.g. "ta-ble". The
// stored offsets are the positions of the hyphens in the original word, not
// in the hyphen-free one: "a-b-c" yields [1 3] for "abc".
func (b *Builder) AddException(word string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	var (
		clean   strings.Builder
		offsets []int
		i       int
	)
	for _, r := range word {
		if r == exceptionMarker {
			offsets = append(offsets, i)
		} else {
			clean.WriteRune(r)
		}
		i++
	}
	if offsets == nil {
		offsets = []int{}
	}
	b.exceptions[clean.String()] = offsets
	return nil
}

// MinWordLength sets the shortest word that is considered for hyphenation.
func (b *Builder) MinWordLength(n int) *Builder {
	b.thresholds.MinWordLength = n
	return b
}

// LeftMin sets the minimum number of characters before the first break.
func (b *Builder) LeftMin(n int) *Builder {
	b.thresholds.LeftMin = n
	return b
}

// RightMin sets the minimum number of characters after the last break.
func (b *Builder) RightMin(n int) *Builder {
	b.thresholds.RightMin = n
	return b
}

// Thresholds replaces all three thresholds at once.
func (b *Builder) Thresholds(t Thresholds) *Builder {
	b.thresholds = t
	return b
}

// Language tags the corpus. It drives case folding.
func (b *Builder) Language(tag language.Tag) *Builder {
	b.lang = tag
	return b
}

// FoldCase makes lookups lower-case words before matching.
func (b *Builder) FoldCase(enabled bool) *Builder {
	b.foldCase = enabled
	return b
}

// PatternCount reports the number of patterns added so far.
func (b *Builder) PatternCount() int {
	return b.trie.Count()
}

// Build freezes the builder. Later calls to AddPattern or AddException fail.
func (b *Builder) Build() *Corpus {
	b.sealed = true
	return &Corpus{
		trie:       b.trie,
		exceptions: b.exceptions,
		thresholds: b.thresholds.normalized(),
		lang:       b.lang,
		foldCase:   b.foldCase,
	}
}

func (b *Builder) checkOpen() error {
	if b.sealed {
		return errors.NewInternalError(errors.CodeCorpusSealed, "corpus builder already built", nil)
	}
	return nil
}
