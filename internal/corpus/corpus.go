package corpus

import (
	"unicode/utf8"

	"github.com/conneroisu/hyphen/internal/trie"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// boundary pads words on both sides before pattern matching.
const boundary = '.'

// Corpus is an immutable, queryable hyphenation dictionary.
type Corpus struct {
	trie       *trie.Trie
	exceptions map[string][]int
	thresholds Thresholds
	lang       language.Tag
	foldCase   bool
}

// PatternCount returns how many patterns were inserted, duplicates included.
func (c *Corpus) PatternCount() int {
	return c.trie.Count()
}

// ExceptionCount returns the number of distinct exception words.
func (c *Corpus) ExceptionCount() int {
	return len(c.exceptions)
}

// Thresholds returns the thresholds applied by HyphenationIndices.
func (c *Corpus) Thresholds() Thresholds {
	return c.thresholds
}

// Language returns the corpus language tag.
func (c *Corpus) Language() language.Tag {
	return c.lang
}

// WithThresholds returns a corpus sharing the same patterns and exceptions but
// using t for lookups.
func (c *Corpus) WithThresholds(t Thresholds) *Corpus {
	cp := *c
	cp.thresholds = t.normalized()
	return &cp
}

// HyphenationIndices returns, in ascending order, the rune offsets in word
// before which a hyphen may be inserted.
func (c *Corpus) HyphenationIndices(word string) []int {
	t := c.thresholds
	n := utf8.RuneCountInString(word)
	if n < t.MinWordLength || n <= t.LeftMin+t.RightMin {
		return []int{}
	}

	if offsets, ok := c.exceptions[word]; ok {
		return clone(offsets)
	}

	key := c.fold(word, n)
	if key != word {
		if offsets, ok := c.exceptions[key]; ok {
			return clone(offsets)
		}
	}

	chars := make([]rune, 0, n+2)
	chars = append(chars, boundary)
	chars = append(chars, []rune(key)...)
	chars = append(chars, boundary)
	points := c.trie.Fetch(chars)

	// points[j+1] is the weight before rune j of the word.
	indices := []int{}
	for j := t.LeftMin; j <= n-t.RightMin; j++ {
		if w := points[j+1]; w > 0 && w%2 == 0 {
			indices = append(indices, j)
		}
	}
	return indices
}

// fold lower-cases word when folding is enabled and keeps the rune count.
func (c *Corpus) fold(word string, n int) string {
	if !c.foldCase {
		return word
	}
	folded := cases.Lower(c.lang).String(word)
	if utf8.RuneCountInString(folded) != n {
		return word
	}
	return folded
}

func clone(offsets []int) []int {
	out := make([]int, len(offsets))
	copy(out, offsets)
	return out
}
