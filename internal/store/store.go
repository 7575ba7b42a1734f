// Package store keeps hyphenation dictionaries in a SQLite database so a
// deployment can load them without shipping the TeX sources.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/texparser"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS dictionaries (
	language    TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	imported_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS patterns (
	language TEXT NOT NULL,
	seq      INTEGER NOT NULL,
	pattern  TEXT NOT NULL,
	PRIMARY KEY (language, seq)
);
CREATE TABLE IF NOT EXISTS exceptions (
	language TEXT NOT NULL,
	seq      INTEGER NOT NULL,
	word     TEXT NOT NULL,
	PRIMARY KEY (language, seq)
);`

// Entry describes one stored dictionary.
type Entry struct {
	Language    string    `json:"language" yaml:"language"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	Patterns    int       `json:"patterns" yaml:"patterns"`
	Exceptions  int       `json:"exceptions" yaml:"exceptions"`
	ImportedAt  time.Time `json:"imported_at" yaml:"imported_at"`
}

// Store is a SQLite backed dictionary store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewStoreError("open "+path, err)
	}
	// One connection keeps in-memory databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewStoreError("apply schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FillFunc feeds a dictionary into a sink, typically texparser.Parse bound to
// a reader.
type FillFunc func(sink texparser.Sink) (texparser.Stats, error)

// Import replaces the dictionary stored for language with the entries produced
// by fill. The import is atomic and is abandoned if fill reports an error.
func (s *Store) Import(ctx context.Context, language, fingerprint string, fill FillFunc) (texparser.Stats, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return texparser.Stats{}, errors.NewStoreError("begin import", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM patterns WHERE language = ?`,
		`DELETE FROM exceptions WHERE language = ?`,
		`DELETE FROM dictionaries WHERE language = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, language); err != nil {
			return texparser.Stats{}, errors.NewStoreError("clear "+language, err)
		}
	}

	sink := &txSink{ctx: ctx, tx: tx, language: language}
	stats, err := fill(sink)
	if err != nil {
		return stats, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO dictionaries (language, fingerprint, imported_at) VALUES (?, ?, ?)`,
		language, fingerprint, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return stats, errors.NewStoreError("record "+language, err)
	}
	if err := tx.Commit(); err != nil {
		return stats, errors.NewStoreError("commit import", err)
	}
	return stats, nil
}

// Load feeds the stored dictionary for language into sink in import order.
func (s *Store) Load(ctx context.Context, language string, sink texparser.Sink) (texparser.Stats, error) {
	var stats texparser.Stats

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dictionaries WHERE language = ?`, language).Scan(&exists)
	if err != nil {
		return stats, errors.NewStoreError("lookup "+language, err)
	}
	if exists == 0 {
		return stats, errors.NewIOError(errors.CodeDictNotFound, "no stored dictionary for "+language, nil)
	}

	collector := errors.NewCollector()
	err = s.each(ctx, `SELECT seq, pattern FROM patterns WHERE language = ? ORDER BY seq`, language,
		func(seq int, value string) {
			stats.Lines++
			if err := sink.AddPattern(value); err != nil {
				stats.Rejected++
				collector.Add(errors.WrapParse(err, "store:"+language, seq))
				return
			}
			stats.Patterns++
		})
	if err != nil {
		return stats, err
	}
	err = s.each(ctx, `SELECT seq, word FROM exceptions WHERE language = ? ORDER BY seq`, language,
		func(seq int, value string) {
			stats.Lines++
			if err := sink.AddException(value); err != nil {
				stats.Rejected++
				collector.Add(errors.WrapParse(err, "store:"+language, seq))
				return
			}
			stats.Exceptions++
		})
	if err != nil {
		return stats, err
	}
	return stats, collector.Err()
}

func (s *Store) each(ctx context.Context, query, language string, fn func(seq int, value string)) error {
	rows, err := s.db.QueryContext(ctx, query, language)
	if err != nil {
		return errors.NewStoreError("query "+language, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seq   int
			value string
		)
		if err := rows.Scan(&seq, &value); err != nil {
			return errors.NewStoreError("scan "+language, err)
		}
		fn(seq, value)
	}
	if err := rows.Err(); err != nil {
		return errors.NewStoreError("iterate "+language, err)
	}
	return nil
}

// Languages lists the stored dictionaries ordered by language.
func (s *Store) Languages(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.language, d.fingerprint, d.imported_at,
			(SELECT COUNT(*) FROM patterns p WHERE p.language = d.language),
			(SELECT COUNT(*) FROM exceptions e WHERE e.language = d.language)
		FROM dictionaries d
		ORDER BY d.language`)
	if err != nil {
		return nil, errors.NewStoreError("list dictionaries", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			imported string
		)
		if err := rows.Scan(&e.Language, &e.Fingerprint, &imported, &e.Patterns, &e.Exceptions); err != nil {
			return nil, errors.NewStoreError("scan dictionary", err)
		}
		e.ImportedAt, _ = time.Parse(time.RFC3339, imported)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("list dictionaries", err)
	}
	return entries, nil
}

// Fingerprint returns the fingerprint recorded for language.
func (s *Store) Fingerprint(ctx context.Context, language string) (string, bool, error) {
	var fp string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM dictionaries WHERE language = ?`, language).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStoreError("fingerprint "+language, err)
	}
	return fp, true, nil
}

// txSink writes entries inside an import transaction.
type txSink struct {
	ctx        context.Context
	tx         *sql.Tx
	language   string
	patterns   int
	exceptions int
}

func (t *txSink) AddPattern(pattern string) error {
	if pattern == "" {
		return errors.NewValidationError(errors.CodePatternEmpty, "pattern is empty")
	}
	if c := pattern[0]; c >= '0' && c <= '9' {
		return errors.NewValidationError(errors.CodePatternLeadingDigit, "pattern must start with a letter").
			WithContext("pattern", pattern)
	}
	t.patterns++
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO patterns (language, seq, pattern) VALUES (?, ?, ?)`, t.language, t.patterns, pattern)
	if err != nil {
		return errors.NewStoreError("insert pattern", err)
	}
	return nil
}

func (t *txSink) AddException(word string) error {
	t.exceptions++
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO exceptions (language, seq, word) VALUES (?, ?, ?)`, t.language, t.exceptions, word)
	if err != nil {
		return errors.NewStoreError("insert exception", err)
	}
	return nil
}
