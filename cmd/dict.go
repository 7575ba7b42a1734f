package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/dictionary"
	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/store"
)

var (
	dictInfoOutput *formatValue
	dictListOutput *formatValue
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect and store hyphenation dictionaries",
}

var dictInfoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Parse a dictionary file and report what it contains",
	Long: `Parse a TeX pattern file, plain pattern list or .xz archive and report
the number of patterns and exceptions, rejected entries and the BLAKE3
fingerprint of its content.

Examples:
  hyphen dict info hyph-en-us.tex
  hyphen dict info -o yaml hyph-de-1996.tex.xz`,
	Args: cobra.ExactArgs(1),
	RunE: runDictInfo,
}

var dictImportCmd = &cobra.Command{
	Use:   "import <lang> <path>",
	Short: "Store a dictionary file in the SQLite store",
	Long: `Parse a dictionary file and store it for a language, replacing any
dictionary stored for that language. The import is all or nothing: a file
with rejected entries is not stored.

Examples:
  hyphen dict import --store hyphen.db en-US hyph-en-us.tex`,
	Args:    cobra.ExactArgs(2),
	PreRunE: bindFlags(map[string]string{"store": "store.path"}),
	RunE:    runDictImport,
}

var dictListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the dictionaries in the SQLite store",
	PreRunE: bindFlags(map[string]string{"store": "store.path"}),
	RunE:    runDictList,
}

// DictInfo is the structured output of dict info.
type DictInfo struct {
	Path        string `json:"path" yaml:"path"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Lines       int    `json:"lines" yaml:"lines"`
	Patterns    int    `json:"patterns" yaml:"patterns"`
	Exceptions  int    `json:"exceptions" yaml:"exceptions"`
	Rejected    int    `json:"rejected" yaml:"rejected"`
	Warnings    string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictInfoCmd, dictImportCmd, dictListCmd)

	dictInfoOutput = addOutputFlag(dictInfoCmd.Flags(), "text", "text", "json", "yaml")
	dictListOutput = addOutputFlag(dictListCmd.Flags(), "table", "table", "json", "yaml")

	for _, c := range []*cobra.Command{dictImportCmd, dictListCmd} {
		c.Flags().String("store", "", "SQLite store path (default from config store.path)")
	}
}

func runDictInfo(cmd *cobra.Command, args []string) error {
	d, err := dictionary.FromFile(args[0], dictionary.DefaultOptions(language.Und))
	if err != nil {
		return err
	}

	info := DictInfo{
		Path:        args[0],
		Fingerprint: d.Fingerprint,
		Lines:       d.Stats.Lines,
		Patterns:    d.Stats.Patterns,
		Exceptions:  d.Stats.Exceptions,
		Rejected:    d.Stats.Rejected,
	}
	if d.Warnings != nil {
		info.Warnings = d.Warnings.Error()
	}

	out := cmd.OutOrStdout()
	if dictInfoOutput.String() != "text" {
		return writeStructured(out, dictInfoOutput.String(), info)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Path:\t%s\n", info.Path)
	fmt.Fprintf(w, "Fingerprint:\t%s\n", info.Fingerprint)
	fmt.Fprintf(w, "Lines:\t%d\n", info.Lines)
	fmt.Fprintf(w, "Patterns:\t%d\n", info.Patterns)
	fmt.Fprintf(w, "Exceptions:\t%d\n", info.Exceptions)
	fmt.Fprintf(w, "Rejected:\t%d\n", info.Rejected)
	if info.Warnings != "" {
		fmt.Fprintf(w, "Warnings:\t%s\n", info.Warnings)
	}
	return w.Flush()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Path == "" {
		return nil, errors.NewConfigError(errors.CodeConfigInvalid,
			"no store configured, pass --store or set store.path")
	}
	return store.Open(cmd.Context(), cfg.Store.Path)
}

func runDictImport(cmd *cobra.Command, args []string) error {
	tag, err := language.Parse(args[0])
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, errors.CodeLanguageInvalid,
			"invalid language tag").WithContext("language", args[0])
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := dictionary.Import(cmd.Context(), st, args[1], tag)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d patterns, %d exceptions\n",
		tag, stats.Patterns, stats.Exceptions)
	return nil
}

func runDictList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Languages(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dictListOutput.String() != "table" {
		return writeStructured(out, dictListOutput.String(), entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tPATTERNS\tEXCEPTIONS\tIMPORTED\tFINGERPRINT")
	for _, e := range entries {
		fp := e.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			e.Language, e.Patterns, e.Exceptions, e.ImportedAt.Format(time.DateTime), fp)
	}
	return w.Flush()
}
