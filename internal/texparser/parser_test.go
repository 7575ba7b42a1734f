package texparser

import (
	"errors"
	"strings"
	"testing"

	herrors "github.com/conneroisu/hyphen/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	patterns   []string
	exceptions []string
}

func (s *recordingSink) AddPattern(p string) error {
	if strings.HasPrefix(p, "9") {
		return herrors.NewValidationError(herrors.CodePatternLeadingDigit, "pattern must start with a letter")
	}
	s.patterns = append(s.patterns, p)
	return nil
}

func (s *recordingSink) AddException(w string) error {
	s.exceptions = append(s.exceptions, w)
	return nil
}

const source = `% hyph-test.tex
# comment before anything
ignored outside blocks
\patterns{
.as4d8f
# a comment
% another comment
  s9d asd4f
}
between blocks
\hyphenation{
a-sdf
ta-ble
}
`

func TestParse(t *testing.T) {
	sink := &recordingSink{}
	stats, err := Parse(strings.NewReader(source), "hyph-test.tex", sink)
	require.NoError(t, err)

	assert.Equal(t, []string{".as4d8f", "s9d", "asd4f"}, sink.patterns)
	assert.Equal(t, []string{"a-sdf", "ta-ble"}, sink.exceptions)
	assert.Equal(t, Stats{Lines: 14, Patterns: 3, Exceptions: 2}, stats)
}

func TestParseCollectsRejectedEntries(t *testing.T) {
	sink := &recordingSink{}
	stats, err := Parse(strings.NewReader("\\patterns{\na1b 9x\nc2d\n9y\n}\n"), "bad.tex", sink)
	require.Error(t, err)

	assert.Equal(t, 2, stats.Patterns)
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, []string{"a1b", "c2d"}, sink.patterns)
	assert.True(t, herrors.HasCode(err, herrors.CodeTexParse))
	assert.Contains(t, err.Error(), "bad.tex:2")
	assert.Contains(t, err.Error(), "bad.tex:4")

	var he *herrors.HyphenError
	require.True(t, errors.As(err, &he))
}

func TestParseUnterminatedBlock(t *testing.T) {
	sink := &recordingSink{}
	_, err := Parse(strings.NewReader("\\hyphenation{\nfoo-bar"), "x.tex", sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo-bar"}, sink.exceptions)
}

func TestParsePatterns(t *testing.T) {
	sink := &recordingSink{}
	stats, err := ParsePatterns(strings.NewReader(".asdf e3f .ad5g\n# c\n\n b1c"), "inline", sink)
	require.NoError(t, err)

	assert.Equal(t, []string{".asdf", "e3f", ".ad5g", "b1c"}, sink.patterns)
	assert.Equal(t, 4, stats.Patterns)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParseReadError(t *testing.T) {
	_, err := Parse(failingReader{}, "broken.tex", &recordingSink{})
	require.Error(t, err)
	assert.True(t, herrors.IsIO(err))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "patterns", ModePatterns.String())
	assert.Equal(t, "exceptions", ModeExceptions.String())
	assert.Equal(t, "neutral", ModeNeutral.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
