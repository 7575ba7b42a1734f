package dictionary

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/store"
)

const texSource = `% test dictionary
\patterns{
a1b
1ba
a1s
}
\hyphenation{
ta-ble-top
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("a1b"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]byte("a1b")))
	assert.NotEqual(t, a, Fingerprint([]byte("a2b")))
}

func TestFromString(t *testing.T) {
	d, err := FromString("% comment\na1b\nb1c\n", DefaultOptions(language.AmericanEnglish))
	require.NoError(t, err)
	assert.Nil(t, d.Warnings)
	assert.Equal(t, "inline", d.Source)
	assert.Equal(t, 2, d.Corpus.PatternCount())
	assert.Equal(t, []int{3, 4}, d.HyphenationIndices("xxabcxx"))
}

func TestFromStringKeepsValidEntries(t *testing.T) {
	d, err := FromString("a1b 2x", DefaultOptions(language.AmericanEnglish))
	require.NoError(t, err)
	require.Error(t, d.Warnings)
	assert.True(t, errors.HasCode(d.Warnings, errors.CodePatternLeadingDigit))
	assert.Equal(t, 1, d.Stats.Rejected)
	assert.Equal(t, 1, d.Corpus.PatternCount())
}

func TestFromTeX(t *testing.T) {
	d, err := FromTeX(strings.NewReader(texSource), "en.tex", DefaultOptions(language.AmericanEnglish))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.Patterns)
	assert.Equal(t, 1, d.Stats.Exceptions)
	assert.Equal(t, []int{2, 6}, d.HyphenationIndices("tabletop"))
}

func TestFromFileDetectsFormat(t *testing.T) {
	opts := DefaultOptions(language.AmericanEnglish)

	tex, err := FromFile(writeFile(t, "hyph-en.tex", texSource), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, tex.Corpus.ExceptionCount())

	plain, err := FromFile(writeFile(t, "hyph-en.pat.txt", "a1b\n1ba\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, plain.Corpus.PatternCount())
	assert.Equal(t, Fingerprint([]byte("a1b\n1ba\n")), plain.Fingerprint)
}

func TestFromFileXZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(texSource))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "hyph-en.tex.xz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	d, err := FromFile(path, DefaultOptions(language.AmericanEnglish))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.Patterns)
	assert.Equal(t, Fingerprint([]byte(texSource)), d.Fingerprint)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.tex"), DefaultOptions(language.English))
	require.Error(t, err)
	assert.True(t, errors.IsIO(err))
	assert.True(t, errors.HasCode(err, errors.CodeDictNotFound))
}

func TestFromFileAppliesOptions(t *testing.T) {
	opts := DefaultOptions(language.AmericanEnglish)
	opts.Thresholds.LeftMin = 3
	opts.FoldCase = true

	d, err := FromFile(writeFile(t, "en.pat", "a1b\nb1c\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Corpus.Thresholds().LeftMin)
	assert.Equal(t, []int{3, 4}, d.HyphenationIndices("XXABCXX"))
}

func TestImportAndFromStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "dict.db"))
	require.NoError(t, err)
	defer st.Close()

	path := writeFile(t, "en.tex", texSource)
	stats, err := Import(ctx, st, path, language.AmericanEnglish)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Patterns)

	d, err := FromStore(ctx, st, DefaultOptions(language.AmericanEnglish))
	require.NoError(t, err)
	assert.Equal(t, "store:en-US", d.Source)
	assert.Equal(t, Fingerprint([]byte(texSource)), d.Fingerprint)
	assert.Equal(t, []int{2, 6}, d.HyphenationIndices("tabletop"))

	_, err = FromStore(ctx, st, DefaultOptions(language.German))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeDictNotFound))
}
