package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "finbot",
	Short: "Korean financial-advisor chatbot",
	Long: `finbot runs a slot-filling financial advisor chatbot: it collects a
13-field investor profile through a Korean dialogue, then routes free-form
questions to profile summaries, stock lookups, screeners and product
recommendations backed by a local vector index.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", ".finbot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// exitOnError prints the error and exits with a non-zero status.
func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
