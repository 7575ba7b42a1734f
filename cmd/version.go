package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/hyphen/internal/version"
)

var (
	versionOutput *formatValue
	versionShort  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show the version, commit, build time and platform of this binary.

Examples:
  hyphen version
  hyphen version --short
  hyphen version -o json`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionOutput = addOutputFlag(versionCmd.Flags(), "text", "text", "json", "yaml")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	if versionShort {
		_, err := fmt.Fprintln(out, info.Short())
		return err
	}
	if versionOutput.String() != "text" {
		return writeStructured(out, versionOutput.String(), info)
	}
	_, err := fmt.Fprintln(out, info.String())
	return err
}
