// Package trie implements the weighted pattern trie used by Liang-style
// hyphenation. Patterns are letter paths annotated with per-position digit
// weights; Fetch overlays every pattern that matches anywhere in a sequence and
// keeps the elementwise maximum.
package trie

import (
	"github.com/conneroisu/hyphen/internal/errors"
)

// node is the state after consuming a path of letters. Weights is nil unless a
// pattern ends exactly here.
type node struct {
	children map[rune]*node
	weights  []int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie stores hyphenation patterns.
type Trie struct {
	root  *node
	count int
}

// New creates an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Count returns the number of accepted Insert calls, duplicates included.
func (t *Trie) Count() int {
	return t.count
}

// Insert adds a pattern such as ".as4d8f". Re-inserting the same letters
// replaces the stored weights.
func (t *Trie) Insert(pattern string) error {
	letters, weights, err := parsePattern(pattern)
	if err != nil {
		return err
	}

	n := t.root
	for _, r := range letters {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	n.weights = weights
	t.count++
	return nil
}

// parsePattern folds over the pattern carrying the pending weight. weights[k]
// is the weight before letter k; a trailing digit adds one entry past the last
// letter.
func parsePattern(pattern string) (letters []rune, weights []int, err error) {
	if pattern == "" {
		return nil, nil, errors.NewValidationError(errors.CodePatternEmpty, "pattern is empty")
	}

	pending, sawDigit := 0, false
	for i, r := range pattern {
		if isDigit(r) {
			if i == 0 {
				return nil, nil, errors.NewValidationError(errors.CodePatternLeadingDigit,
					"pattern must start with a letter").WithContext("pattern", pattern)
			}
			pending, sawDigit = int(r-'0'), true
			continue
		}
		letters = append(letters, r)
		weights = append(weights, pending)
		pending, sawDigit = 0, false
	}
	if sawDigit {
		weights = append(weights, pending)
	}
	return letters, weights, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Fetch returns, for every position of chars, the maximum weight contributed by
// any pattern matching a substring that covers it.
func (t *Trie) Fetch(chars []rune) []int {
	points := make([]int, len(chars))
	for i := range chars {
		n := t.root
		for j := i; j < len(chars); j++ {
			next, ok := n.children[chars[j]]
			if !ok {
				break
			}
			n = next
			for k, w := range n.weights {
				if i+k >= len(points) {
					break
				}
				if w > points[i+k] {
					points[i+k] = w
				}
			}
		}
	}
	return points
}
