package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/hyphen/internal/htmltext"
	"github.com/conneroisu/hyphen/internal/hyphenate"
)

var (
	hyphenateDicts []string
	hyphenateLang  string
	hyphenateHTML  bool
)

var hyphenateCmd = &cobra.Command{
	Use:     "hyphenate [text...]",
	Aliases: []string{"h"},
	Short:   "Insert hyphenation marks into text",
	Long: `Insert a mark at every allowed break in the text. The text is taken from
the arguments, or from standard input when there are none.

Examples:
  hyphen hyphenate --dict en-US=hyph-en-us.tex "Hyphenation is useful"
  hyphen hyphenate --mark - --lang de "Silbentrennung"
  cat page.html | hyphen hyphenate --html --mark "&shy;"`,
	PreRunE: bindFlags(map[string]string{
		"mark":            "hyphenation.mark",
		"min-word-length": "hyphenation.min_word_length",
		"left-min":        "hyphenation.left_min",
		"right-min":       "hyphenation.right_min",
		"fold-case":       "hyphenation.fold_case",
	}),
	RunE: runHyphenate,
}

func init() {
	rootCmd.AddCommand(hyphenateCmd)
	addDictionaryFlags(hyphenateCmd)
	hyphenateCmd.Flags().StringP("mark", "m", hyphenate.SoftHyphen, "Mark inserted at each break")
	hyphenateCmd.Flags().BoolVar(&hyphenateHTML, "html", false, "Treat input as HTML and only hyphenate text content")
}

// addDictionaryFlags registers the flags shared by commands that hyphenate.
func addDictionaryFlags(c *cobra.Command) {
	c.Flags().StringArrayVarP(&hyphenateDicts, "dict", "d", nil, "Dictionary file as path or lang=path (repeatable)")
	c.Flags().StringVarP(&hyphenateLang, "lang", "L", "", "Language to hyphenate in (default from config)")
	c.Flags().Int("min-word-length", 5, "Shortest word that is hyphenated")
	c.Flags().Int("left-min", 2, "Minimum letters before the first break")
	c.Flags().Int("right-min", 2, "Minimum letters after the last break")
	c.Flags().Bool("fold-case", false, "Lower-case words before pattern lookup")
}

func runHyphenate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer closeLog()

	reg, err := loadRegistry(ctx, cfg, logger, hyphenateDicts)
	if err != nil {
		return err
	}
	d, err := reg.Match(hyphenateLang)
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	mark := cfg.Hyphenation.Mark
	if hyphenateHTML {
		out, err := htmltext.Rewrite(text, func(lang string) hyphenate.Dictionary {
			if lang == "" {
				return d
			}
			if found, ok := reg.Lookup(lang); ok {
				return found
			}
			return nil
		}, mark)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}

	out := hyphenate.HyphenateWith(text, d, mark)
	if len(args) > 0 {
		out += "\n"
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
