// Package dictionary loads hyphenation dictionaries from TeX pattern files,
// plain pattern lists, xz compressed archives and the SQLite store, and keeps
// the loaded dictionaries in a language keyed Registry.
package dictionary

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/corpus"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/store"
	"github.com/conneroisu/hyphen/internal/texparser"
)

// Options control how a dictionary is compiled into a corpus.
type Options struct {
	Language   language.Tag
	Thresholds corpus.Thresholds
	FoldCase   bool
}

// DefaultOptions returns options for language with default thresholds.
func DefaultOptions(tag language.Tag) Options {
	return Options{Language: tag, Thresholds: corpus.DefaultThresholds()}
}

// Dictionary is a compiled corpus plus where it came from.
type Dictionary struct {
	Corpus      *corpus.Corpus
	Options     Options
	Source      string
	Fingerprint string
	Stats       texparser.Stats
	LoadedAt    time.Time

	// Warnings holds entries that were rejected while loading.
	Warnings error
}

// Language returns the dictionary's language tag.
func (d *Dictionary) Language() language.Tag {
	return d.Options.Language
}

// HyphenationIndices delegates to the corpus.
func (d *Dictionary) HyphenationIndices(word string) []int {
	return d.Corpus.HyphenationIndices(word)
}

// Fingerprint returns the hex encoded BLAKE3 digest of data.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FromString compiles a whitespace separated pattern list.
func FromString(patterns string, opts Options) (*Dictionary, error) {
	return compile([]byte(patterns), "inline", opts, texparser.ParsePatterns)
}

// FromTeX compiles a TeX hyphenation file read from r.
func FromTeX(r io.Reader, source string, opts Options) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO(err, errors.CodeDictRead, "reading "+source)
	}
	return compile(data, source, opts, texparser.Parse)
}

// FromFile loads a dictionary from disk. Files ending in .xz are
// decompressed. Content containing a \patterns block is parsed as TeX,
// anything else as a plain pattern list.
func FromFile(path string, opts Options) (*Dictionary, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return compile(data, path, opts, parserFor(data))
}

// ReadFile reads path, decompressing .xz files.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapIO(err, errors.CodeDictNotFound, "dictionary not found").
				WithContext("path", path)
		}
		return nil, errors.WrapIO(err, errors.CodeDictRead, "opening dictionary").
			WithContext("path", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.WrapIO(err, errors.CodeDictRead, "opening xz stream").
				WithContext("path", path)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO(err, errors.CodeDictRead, "reading dictionary").
			WithContext("path", path)
	}
	return data, nil
}

// FromStore loads the dictionary stored for opts.Language.
func FromStore(ctx context.Context, st *store.Store, opts Options) (*Dictionary, error) {
	lang := opts.Language.String()
	fingerprint, ok, err := st.Fingerprint(ctx, lang)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewIOError(errors.CodeDictNotFound, "no stored dictionary", nil).
			WithContext("language", lang)
	}

	b := newBuilder(opts)
	stats, err := st.Load(ctx, lang, b)
	return finish(b, stats, err, "store:"+lang, fingerprint, opts)
}

// Import parses the dictionary file at path and stores it for language.
func Import(ctx context.Context, st *store.Store, path string, tag language.Tag) (texparser.Stats, error) {
	data, err := ReadFile(path)
	if err != nil {
		return texparser.Stats{}, err
	}
	parse := parserFor(data)
	return st.Import(ctx, tag.String(), Fingerprint(data), func(sink texparser.Sink) (texparser.Stats, error) {
		return parse(bytes.NewReader(data), path, sink)
	})
}

type parseFunc func(io.Reader, string, texparser.Sink) (texparser.Stats, error)

func parserFor(data []byte) parseFunc {
	if bytes.Contains(data, []byte(`\patterns`)) {
		return texparser.Parse
	}
	return texparser.ParsePatterns
}

func compile(data []byte, source string, opts Options, parse parseFunc) (*Dictionary, error) {
	b := newBuilder(opts)
	stats, err := parse(bytes.NewReader(data), source, b)
	return finish(b, stats, err, source, Fingerprint(data), opts)
}

func newBuilder(opts Options) *corpus.Builder {
	return corpus.NewBuilder().
		Thresholds(opts.Thresholds).
		Language(opts.Language).
		FoldCase(opts.FoldCase)
}

func finish(b *corpus.Builder, stats texparser.Stats, err error, source, fingerprint string, opts Options) (*Dictionary, error) {
	var warnings error
	if err != nil {
		if !errors.IsRecoverable(err) {
			return nil, err
		}
		warnings = err
	}

	return &Dictionary{
		Corpus:      b.Build(),
		Options:     opts,
		Source:      source,
		Fingerprint: fingerprint,
		Stats:       stats,
		LoadedAt:    time.Now(),
		Warnings:    warnings,
	}, nil
}
