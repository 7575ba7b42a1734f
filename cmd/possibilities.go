package cmd

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/conneroisu/hyphen/internal/hyphenate"
)

var possibilitiesOutput *formatValue

var possibilitiesCmd = &cobra.Command{
	Use:     "possibilities [text...]",
	Aliases: []string{"p"},
	Short:   "List the allowed break offsets in text",
	Long: `List the byte offsets in the text where a break is allowed, together
with the parts of every word that can be broken.

Examples:
  hyphen possibilities --dict hyph-en-us.tex "Hyphenation"
  hyphen possibilities -o json "Hyphenation is useful"`,
	PreRunE: bindFlags(map[string]string{
		"min-word-length": "hyphenation.min_word_length",
		"left-min":        "hyphenation.left_min",
		"right-min":       "hyphenation.right_min",
		"fold-case":       "hyphenation.fold_case",
	}),
	RunE: runPossibilities,
}

// WordBreaks describes one word that has breaks.
type WordBreaks struct {
	Word   string   `json:"word" yaml:"word"`
	Offset int      `json:"offset" yaml:"offset"`
	Parts  []string `json:"parts" yaml:"parts"`
}

// PossibilitiesResult is the structured output of the command.
type PossibilitiesResult struct {
	Language string       `json:"language" yaml:"language"`
	Offsets  []int        `json:"offsets" yaml:"offsets"`
	Words    []WordBreaks `json:"words" yaml:"words"`
}

func init() {
	rootCmd.AddCommand(possibilitiesCmd)
	addDictionaryFlags(possibilitiesCmd)
	possibilitiesOutput = addOutputFlag(possibilitiesCmd.Flags(), "text", "text", "json", "yaml")
}

func runPossibilities(cmd *cobra.Command, args []string) error {
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

	result := PossibilitiesResult{
		Language: d.Language().String(),
		Offsets:  hyphenate.Possibilities(text, d),
		Words:    wordBreaks(text, d),
	}

	out := cmd.OutOrStdout()
	if possibilitiesOutput.String() != "text" {
		return writeStructured(out, possibilitiesOutput.String(), result)
	}

	offsets := make([]string, len(result.Offsets))
	for i, o := range result.Offsets {
		offsets[i] = fmt.Sprint(o)
	}
	fmt.Fprintf(out, "offsets: %s\n", strings.Join(offsets, " "))
	for _, w := range result.Words {
		fmt.Fprintf(out, "%d\t%s\n", w.Offset, strings.Join(w.Parts, "-"))
	}
	return nil
}

// wordBreaks lists the words of text that split into more than one part.
func wordBreaks(text string, d hyphenate.Dictionary) []WordBreaks {
	words := []WordBreaks{}
	state := -1
	offset := 0
	for rest := text; len(rest) > 0; {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if parts := hyphenate.Parts(word, d); len(parts) > 1 {
			words = append(words, WordBreaks{Word: word, Offset: offset, Parts: parts})
		}
		offset += len(word)
	}
	return words
}
