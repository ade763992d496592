package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ocrbench/ocrbench/internal/config"
)

var initConfigOutput string

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(initConfigOutput); err == nil {
			return fmt.Errorf("refusing to overwrite existing %s", initConfigOutput)
		}
		if err := config.Default().Save(initConfigOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", initConfigOutput)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Validate a configuration file without running anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
		return nil
	},
}

func init() {
	initConfigCmd.Flags().StringVarP(&initConfigOutput, "output", "o", "config.yaml", "Destination path")
}
