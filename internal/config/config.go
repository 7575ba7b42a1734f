// Package config provides configuration management for hyphen using Viper
// for loading from .hyphen.yml files, HYPHEN_ prefixed environment variables
// and command-line flags.
//
// The configuration names the dictionaries to load, the hyphenation
// thresholds and mark, the HTTP server, logging and the dictionary store.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/corpus"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/hyphenate"
)

// EnvPrefix prefixes every environment override, e.g. HYPHEN_SERVER_PORT.
const EnvPrefix = "HYPHEN"

type Config struct {
	Dictionaries []DictionaryConfig `mapstructure:"dictionaries" yaml:"dictionaries"`
	Hyphenation  HyphenationConfig  `mapstructure:"hyphenation" yaml:"hyphenation"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	Store        StoreConfig        `mapstructure:"store" yaml:"store"`
}

type DictionaryConfig struct {
	Language string `mapstructure:"language" yaml:"language"`
	Path     string `mapstructure:"path" yaml:"path"`
}

type HyphenationConfig struct {
	MinWordLength   int    `mapstructure:"min_word_length" yaml:"min_word_length"`
	LeftMin         int    `mapstructure:"left_min" yaml:"left_min"`
	RightMin        int    `mapstructure:"right_min" yaml:"right_min"`
	Mark            string `mapstructure:"mark" yaml:"mark"`
	FoldCase        bool   `mapstructure:"fold_case" yaml:"fold_case"`
	DefaultLanguage string `mapstructure:"default_language" yaml:"default_language"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Watch          bool     `mapstructure:"watch" yaml:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Dir    string `mapstructure:"dir" yaml:"dir"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SetDefaults registers the default value of every key on v. Keys with a
// default are also picked up from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("hyphenation.min_word_length", corpus.DefaultMinWordLength)
	v.SetDefault("hyphenation.left_min", corpus.DefaultLeftMin)
	v.SetDefault("hyphenation.right_min", corpus.DefaultRightMin)
	v.SetDefault("hyphenation.mark", hyphenate.SoftHyphen)
	v.SetDefault("hyphenation.fold_case", false)
	v.SetDefault("hyphenation.default_language", "en-US")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.watch", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.dir", "")

	v.SetDefault("store.path", "")
}

// BindEnv enables HYPHEN_ environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.CodeConfigInvalid, "decoding configuration")
	}

	// Slices set through viper.Set or the environment arrive as strings.
	if len(config.Server.AllowedOrigins) == 0 && v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	result := ValidateConfigWithDetails(&config)
	if result.HasErrors() {
		first := result.Errors[0]
		return nil, errors.NewConfigError(errors.CodeConfigInvalid,
			fmt.Sprintf("invalid configuration: %s", first.Error())).
			WithContext("field", first.Field).
			WithContext("errors", len(result.Errors))
	}

	return &config, nil
}

// Thresholds returns the corpus thresholds configured for hyphenation.
func (c *Config) Thresholds() corpus.Thresholds {
	return corpus.Thresholds{
		MinWordLength: c.Hyphenation.MinWordLength,
		LeftMin:       c.Hyphenation.LeftMin,
		RightMin:      c.Hyphenation.RightMin,
	}
}

// DefaultTag parses the default language.
func (c *Config) DefaultTag() (language.Tag, error) {
	return parseTag(c.Hyphenation.DefaultLanguage)
}

// Address returns host:port for the HTTP server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Tag parses the dictionary's language.
func (d DictionaryConfig) Tag() (language.Tag, error) {
	return parseTag(d.Language)
}

func parseTag(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, errors.Wrap(err, errors.ErrorTypeConfig, errors.CodeLanguageInvalid,
			"invalid language tag").WithContext("language", s)
	}
	return tag, nil
}
