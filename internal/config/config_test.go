package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/corpus"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/hyphenate"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, corpus.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, hyphenate.SoftHyphen, cfg.Hyphenation.Mark)
	assert.False(t, cfg.Hyphenation.FoldCase)
	assert.Equal(t, "localhost:8080", cfg.Address())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Server.Watch)
	assert.Empty(t, cfg.Dictionaries)

	tag, err := cfg.DefaultTag()
	require.NoError(t, err)
	assert.Equal(t, language.AmericanEnglish, tag)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "hyph-de.tex")
	require.NoError(t, os.WriteFile(dict, []byte("\\patterns{\na1b\n}\n"), 0644))

	path := filepath.Join(dir, ".hyphen.yml")
	content := `dictionaries:
  - language: de
    path: ` + dict + `
hyphenation:
  min_word_length: 4
  left_min: 1
  right_min: 3
  mark: "-"
  fold_case: true
  default_language: de
server:
  port: 9090
  host: 0.0.0.0
  allowed_origins:
    - https://example.com
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	require.Len(t, cfg.Dictionaries, 1)
	assert.Equal(t, "de", cfg.Dictionaries[0].Language)
	assert.Equal(t, dict, cfg.Dictionaries[0].Path)
	tag, err := cfg.Dictionaries[0].Tag()
	require.NoError(t, err)
	assert.Equal(t, language.German, tag)

	assert.Equal(t, corpus.Thresholds{MinWordLength: 4, LeftMin: 1, RightMin: 3}, cfg.Thresholds())
	assert.Equal(t, "-", cfg.Hyphenation.Mark)
	assert.True(t, cfg.Hyphenation.FoldCase)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HYPHEN_HYPHENATION_LEFT_MIN", "3")
	t.Setenv("HYPHEN_SERVER_PORT", "7070")
	t.Setenv("HYPHEN_LOG_LEVEL", "warn")

	v := viper.New()
	BindEnv(v)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Hyphenation.LeftMin)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		field string
	}{
		{"negative left min", "hyphenation.left_min", -1, "hyphenation.left_min"},
		{"negative min length", "hyphenation.min_word_length", -3, "hyphenation.min_word_length"},
		{"empty mark", "hyphenation.mark", "", "hyphenation.mark"},
		{"bad default language", "hyphenation.default_language", "not a tag", "hyphenation.default_language"},
		{"port out of range", "server.port", 70000, "server.port"},
		{"host injection", "server.host", "localhost; rm -rf /", "server.host"},
		{"unknown level", "log.level", "loud", "log.level"},
		{"unknown format", "log.format", "xml", "log.format"},
		{"store traversal", "store.path", "../../etc/dict.db", "store.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			cfg, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

			var he *errors.HyphenError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.field, he.Context["field"])
		})
	}
}

func TestLoadRejectsUndecodable(t *testing.T) {
	v := viper.New()
	v.Set("server.port", "invalid_port")

	_, err := LoadFrom(v)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestValidateDictionaries(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "en.pat")
	require.NoError(t, os.WriteFile(existing, []byte("a1b"), 0644))

	cfg := &Config{
		Dictionaries: []DictionaryConfig{
			{Language: "en-US", Path: existing},
			{Language: "en-US", Path: existing},
			{Language: "??", Path: existing},
			{Language: "de", Path: "../secrets/de.tex"},
			{Language: "fr", Path: filepath.Join(dir, "missing.tex")},
		},
		Hyphenation: HyphenationConfig{Mark: "-", DefaultLanguage: "en-US"},
		Log:         LogConfig{Level: "info", Format: "text"},
	}

	result := ValidateConfigWithDetails(cfg)
	assert.False(t, result.Valid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"dictionaries[1].language",
		"dictionaries[2].language",
		"dictionaries[3].path",
	}, fields)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "dictionaries[4].path", result.Warnings[0].Field)
	assert.Contains(t, result.String(), "Validation Errors")
}

func TestValidateWarnings(t *testing.T) {
	cfg := &Config{
		Hyphenation: HyphenationConfig{Mark: "-", DefaultLanguage: "en"},
		Server:      ServerConfig{Port: 80, AllowedOrigins: []string{"*"}},
		Log:         LogConfig{Level: "info"},
	}

	result := ValidateConfigWithDetails(cfg)
	assert.True(t, result.Valid)
	assert.True(t, result.HasWarnings())
	assert.Len(t, result.Warnings, 3)
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"dicts/hyph-en.tex", false},
		{"/usr/share/hyphen/hyph-de.tex.xz", false},
		{"./dict..v2.pat", false},
		{"", true},
		{"../outside.tex", true},
		{"dicts/../../outside.tex", true},
		{"dict;rm -rf.tex", true},
		{"$(whoami).tex", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
