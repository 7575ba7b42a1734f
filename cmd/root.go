// Package cmd provides the hyphen command-line interface.
//
// Configuration is read, highest priority first, from command-line flags,
// HYPHEN_<SECTION>_<OPTION> environment variables (HYPHEN_SERVER_PORT,
// HYPHEN_HYPHENATION_LEFT_MIN, ...) and a YAML file. The file is the one
// named by --config, else by HYPHEN_CONFIG_FILE, else .hyphen.yml in the
// working directory.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/hyphen/internal/config"
)

var (
	cfgFile string
	verbose bool

	// configReadErr is kept for commands that require an explicit file.
	configReadErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hyphen",
	Short: "Hyphenate text with TeX hyphenation patterns",
	Long: `hyphen finds the places where words may be broken across lines using
Liang's algorithm and TeX pattern dictionaries, and inserts soft hyphens or
any other mark at those places.

Quick Start:
  hyphen hyphenate --dict en-US=hyph-en-us.tex "Hyphenation is useful"
  hyphen possibilities -o json "Hyphenation"
  hyphen dict info hyph-en-us.tex
  hyphen serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .hyphen.yml, can also use HYPHEN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log dictionary loading for one-shot commands")
}

// initConfig points viper at the config file and enables environment
// overrides. A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("HYPHEN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hyphen")
	}

	config.BindEnv(viper.GetViper())
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	configReadErr = viper.ReadInConfig()
	if configReadErr == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
