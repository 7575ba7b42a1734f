package dictionary

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/logging"
)

func mustString(t *testing.T, patterns string, tag language.Tag) *Dictionary {
	t.Helper()
	d, err := FromString(patterns, DefaultOptions(tag))
	require.NoError(t, err)
	return d
}

func TestRegistryMatch(t *testing.T) {
	r := NewRegistry(logging.Nop(), language.AmericanEnglish)
	r.Register(mustString(t, "a1b", language.AmericanEnglish))
	r.Register(mustString(t, "c1d", language.German))

	tests := []struct {
		accept string
		want   language.Tag
	}{
		{"", language.AmericanEnglish},
		{"en-US", language.AmericanEnglish},
		{"en", language.AmericanEnglish},
		{"de-CH", language.German},
		{"fr, de;q=0.5", language.German},
		{"ja", language.AmericanEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			d, err := r.Match(tt.accept)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Language())
		})
	}
}

func TestRegistryMatchErrors(t *testing.T) {
	empty := NewRegistry(nil, language.AmericanEnglish)
	_, err := empty.Match("en")
	assert.True(t, errors.HasCode(err, errors.CodeDictNotFound))

	r := NewRegistry(nil, language.French)
	r.Register(mustString(t, "a1b", language.German))
	_, err = r.Match("en-US")
	assert.True(t, errors.HasCode(err, errors.CodeDictNotFound))

	_, err = r.Match("en-US;q=abc")
	assert.True(t, errors.IsValidation(err))
}

func TestRegistryListAndGet(t *testing.T) {
	r := NewRegistry(nil, language.AmericanEnglish)
	r.Register(mustString(t, "a1b", language.German))
	r.Register(mustString(t, "a1b", language.AmericanEnglish))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "de", list[0].Language().String())
	assert.Equal(t, "en-US", list[1].Language().String())

	_, ok := r.Get(language.German)
	assert.True(t, ok)
	_, ok = r.Get(language.French)
	assert.False(t, ok)
	assert.Empty(t, r.Sources())
}

func TestRegistryReload(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "en.pat", "a1b\n")

	r := NewRegistry(nil, language.AmericanEnglish)
	_, err := r.LoadFile(ctx, path, DefaultOptions(language.AmericanEnglish))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, r.Sources())

	d, _ := r.Get(language.AmericanEnglish)
	assert.Equal(t, []int{3}, d.HyphenationIndices("xxabxx"))

	require.NoError(t, os.WriteFile(path, []byte("a1b\nb1c\n"), 0644))
	tags, err := r.Reload(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []language.Tag{language.AmericanEnglish}, tags)

	d, _ = r.Get(language.AmericanEnglish)
	assert.Equal(t, []int{3, 4}, d.HyphenationIndices("xxabcxx"))

	require.NoError(t, os.Remove(path))
	_, err = r.Reload(ctx, path)
	require.Error(t, err)
	kept, _ := r.Get(language.AmericanEnglish)
	assert.Same(t, d, kept)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(nil, language.AmericanEnglish)
	replacement := mustString(t, "a1b", language.AmericanEnglish)
	r.Register(replacement)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.Register(replacement)
				return
			}
			d, err := r.Match("en")
			if assert.NoError(t, err) {
				assert.Equal(t, []int{3}, d.HyphenationIndices("xxabxx"))
			}
		}(i)
	}
	wg.Wait()
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(nil, language.AmericanEnglish)
	_, ok := r.Lookup("en")
	assert.False(t, ok)

	r.Register(mustString(t, "a1b", language.AmericanEnglish))
	r.Register(mustString(t, "c1d", language.German))

	d, ok := r.Lookup("de-AT")
	require.True(t, ok)
	assert.Equal(t, language.German, d.Language())

	_, ok = r.Lookup("ja")
	assert.False(t, ok)
	_, ok = r.Lookup("")
	assert.False(t, ok)
	_, ok = r.Lookup("en;q=abc")
	assert.False(t, ok)
}
