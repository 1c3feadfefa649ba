package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwhyun/finbot/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			exitOnError(fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile))
		}

		cfg := config.DefaultConfig()
		exitOnError(cfg.Save(cfgFile))
		fmt.Printf("Wrote %s\n", cfgFile)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
