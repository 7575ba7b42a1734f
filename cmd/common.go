package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/config"
	"github.com/conneroisu/hyphen/internal/dictionary"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/logging"
	"github.com/conneroisu/hyphen/internal/store"
)

// loadConfig loads the configuration, failing when a config file was named
// explicitly but could not be read.
func loadConfig() (*config.Config, error) {
	explicit := cfgFile != "" || os.Getenv("HYPHEN_CONFIG_FILE") != ""
	if explicit && configReadErr != nil {
		return nil, errors.Wrap(configReadErr, errors.ErrorTypeConfig, errors.CodeConfigInvalid,
			"reading config file")
	}
	return config.Load()
}

// newLogger builds the logger for a command. One-shot commands only log
// warnings unless --verbose is given.
func newLogger(cfg *config.Config, w io.Writer, oneShot bool) (logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	if oneShot && !verbose && level < logging.LevelWarn {
		level = logging.LevelWarn
	}
	lc := &logging.LoggerConfig{Level: level, Format: cfg.Log.Format, Output: w}

	if cfg.Log.Dir == "" {
		return logging.NewLogger(lc), func() {}, nil
	}
	fl, err := logging.NewFileLogger(lc, cfg.Log.Dir)
	if err != nil {
		return nil, nil, err
	}
	return fl, func() { fl.Close() }, nil
}

// bindFlags binds command flags to viper keys. Bindings are made when the
// command runs so commands sharing a key do not overwrite each other.
func bindFlags(bindings map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for flagName, key := range bindings {
			flag := cmd.Flags().Lookup(flagName)
			if flag == nil {
				return fmt.Errorf("unknown flag %q", flagName)
			}
			if err := viper.BindPFlag(key, flag); err != nil {
				return err
			}
		}
		return nil
	}
}

// dictSpec is a --dict value: "path" or "lang=path".
type dictSpec struct {
	Language string
	Path     string
}

func parseDictSpec(s, defaultLang string) (dictSpec, error) {
	if s == "" {
		return dictSpec{}, errors.NewValidationError(errors.CodeInvalidRequest, "empty --dict value")
	}
	if lang, path, ok := strings.Cut(s, "="); ok {
		if lang == "" || path == "" {
			return dictSpec{}, errors.NewValidationError(errors.CodeInvalidRequest,
				fmt.Sprintf("invalid --dict value %q, want lang=path", s))
		}
		return dictSpec{Language: lang, Path: path}, nil
	}
	return dictSpec{Language: defaultLang, Path: s}, nil
}

// loadRegistry loads the configured dictionaries, then the --dict ones, then
// any stored language not loaded from a file.
func loadRegistry(ctx context.Context, cfg *config.Config, logger logging.Logger, dicts []string) (*dictionary.Registry, error) {
	fallback, err := cfg.DefaultTag()
	if err != nil {
		return nil, err
	}
	reg := dictionary.NewRegistry(logger, fallback)

	specs := make([]dictSpec, 0, len(cfg.Dictionaries)+len(dicts))
	for _, d := range cfg.Dictionaries {
		specs = append(specs, dictSpec{Language: d.Language, Path: d.Path})
	}
	for _, s := range dicts {
		spec, err := parseDictSpec(s, cfg.Hyphenation.DefaultLanguage)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	for _, spec := range specs {
		tag, err := language.Parse(spec.Language)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.CodeLanguageInvalid,
				"invalid language tag").WithContext("language", spec.Language)
		}
		if _, err := reg.LoadFile(ctx, spec.Path, dictOptions(cfg, tag)); err != nil {
			return nil, err
		}
	}

	if cfg.Store.Path != "" {
		if err := loadStored(ctx, cfg, reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func loadStored(ctx context.Context, cfg *config.Config, reg *dictionary.Registry) error {
	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Languages(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		tag, err := language.Parse(e.Language)
		if err != nil {
			continue
		}
		if _, ok := reg.Get(tag); ok {
			continue
		}
		d, err := dictionary.FromStore(ctx, st, dictOptions(cfg, tag))
		if err != nil {
			return err
		}
		reg.Register(d)
	}
	return nil
}

func dictOptions(cfg *config.Config, tag language.Tag) dictionary.Options {
	return dictionary.Options{
		Language:   tag,
		Thresholds: cfg.Thresholds(),
		FoldCase:   cfg.Hyphenation.FoldCase,
	}
}

// readInput joins args, or reads stdin when there are none.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.WrapIO(err, errors.CodeInputRead, "reading standard input")
	}
	return string(data), nil
}
